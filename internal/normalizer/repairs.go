package normalizer

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"datanorm/internal/models"
)

// vehicleEntry accumulates a vehicle and its owner set during the pass.
type vehicleEntry struct {
	vehicle *models.Vehicle
	owners  *orderedmap.OrderedMap[models.Key, struct{}]
}

// NormalizeRepairs folds work orders into deduplicated clients, vehicles and
// operations in a single pass.
//
// Every collection, and every vehicle's owner list, is ordered by first
// sighting. A client's repair history keeps input order. Names, vehicle
// details and operation details are taken from the first record that
// mentions the key; later differences are ignored.
func (t *Transformer) NormalizeRepairs(works []models.WorkOrder) (*models.RepairDocument, *Summary, error) {
	clients := orderedmap.New[models.Key, *models.Client]()
	vehicles := orderedmap.New[models.Key, *vehicleEntry]()
	operations := orderedmap.New[models.Key, *models.Operation]()
	conflicts := orderedmap.New[models.Key, struct{}]()

	for i, work := range works {
		if work.Vehicle == nil {
			return nil, nil, fmt.Errorf("%w: %s[%d].viatura", ErrMissingField, models.RepairsRootKey, i)
		}

		client, ok := clients.Get(work.NIF)
		if !ok {
			client = &models.Client{
				Name:          work.Name,
				NIF:           work.NIF,
				RepairHistory: []models.RepairEntry{},
			}
			clients.Set(work.NIF, client)
		}

		plate := work.Vehicle.Plate

		entry, ok := vehicles.Get(plate)
		if !ok {
			entry = &vehicleEntry{
				vehicle: &models.Vehicle{
					Brand:        work.Vehicle.Brand,
					Model:        work.Vehicle.Model,
					LicensePlate: plate,
				},
				owners: orderedmap.New[models.Key, struct{}](),
			}
			vehicles.Set(plate, entry)
		}

		entry.owners.Set(work.NIF, struct{}{})

		codes := make([]models.Key, 0, len(work.Interventions))

		for _, intervention := range work.Interventions {
			op, seen := operations.Get(intervention.Code)
			if !seen {
				operations.Set(intervention.Code, &models.Operation{
					Code:        intervention.Code,
					Name:        intervention.Name,
					Description: intervention.Description,
				})
			} else if op.Name != intervention.Name || op.Description != intervention.Description {
				conflicts.Set(intervention.Code, struct{}{})
			}

			codes = append(codes, intervention.Code)
		}

		client.RepairHistory = append(client.RepairHistory, models.RepairEntry{
			Date:          work.Date,
			Vehicle:       plate,
			Interventions: codes,
		})
	}

	doc := &models.RepairDocument{
		Clients:    values(clients),
		Vehicles:   make([]*models.Vehicle, 0, vehicles.Len()),
		Operations: values(operations),
	}

	for pair := vehicles.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.vehicle.Owners = keys(pair.Value.owners)
		doc.Vehicles = append(doc.Vehicles, pair.Value.vehicle)
	}

	summary := &Summary{
		Kind:                  models.DatasetRepairs,
		Records:               len(works),
		Clients:               len(doc.Clients),
		Vehicles:              len(doc.Vehicles),
		Operations:            len(doc.Operations),
		ConflictingOperations: keys(conflicts),
	}

	return doc, summary, nil
}

func values[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []V {
	out := make([]V, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}

	return out
}

func keys[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []K {
	out := make([]K, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}

	return out
}
