package normalizer

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"

	"datanorm/internal/models"
)

func op(code, name, description string) models.Intervention {
	return models.Intervention{Code: models.Key(code), Name: name, Description: description}
}

func work(nif, name, date, plate string, ops ...models.Intervention) models.WorkOrder {
	if ops == nil {
		ops = []models.Intervention{}
	}

	return models.WorkOrder{
		NIF:           models.Key(nif),
		Name:          name,
		Date:          date,
		Vehicle:       &models.VehicleInfo{Plate: models.Key(plate), Brand: "Renault", Model: "Clio"},
		Interventions: ops,
	}
}

func TestNormalizeRepairs_SameClientTwoVisits(t *testing.T) {
	works := []models.WorkOrder{
		work("123", "Ana", "2024-01-10", "AA-11-BB", op("OP1", "Óleo", "Mudança de óleo")),
		work("123", "Ana", "2024-02-11", "AA-11-BB", op("OP2", "Travões", "Pastilhas novas")),
	}

	doc, summary, err := NewTransformer().NormalizeRepairs(works)
	if err != nil {
		t.Fatalf("NormalizeRepairs returned error: %v", err)
	}

	if len(doc.Clients) != 1 {
		t.Fatalf("Expected 1 client, got %d", len(doc.Clients))
	}

	client := doc.Clients[0]
	if client.NIF != "123" || len(client.RepairHistory) != 2 {
		t.Errorf("Client = %+v, want nif 123 with 2 history entries", client)
	}

	if len(doc.Vehicles) != 1 {
		t.Fatalf("Expected 1 vehicle, got %d", len(doc.Vehicles))
	}

	if !reflect.DeepEqual(doc.Vehicles[0].Owners, []models.Key{"123"}) {
		t.Errorf("Owners = %v, want [123]", doc.Vehicles[0].Owners)
	}

	if len(doc.Operations) != 2 {
		t.Errorf("Expected 2 operations, got %d", len(doc.Operations))
	}

	if summary.Records != 2 || summary.Clients != 1 || summary.Vehicles != 1 || summary.Operations != 2 {
		t.Errorf("Summary = %+v", summary)
	}
}

func TestNormalizeRepairs_DedupAndInsertionOrder(t *testing.T) {
	works := []models.WorkOrder{
		work("300", "Carla", "d1", "CC-33-CC", op("B", "b", "b")),
		work("100", "Abel", "d2", "AA-11-AA", op("A", "a", "a")),
		work("300", "Carla", "d3", "AA-11-AA", op("C", "c", "c"), op("B", "b", "b")),
		work("200", "Bruno", "d4", "BB-22-BB"),
		work("100", "Abel", "d5", "CC-33-CC", op("A", "a", "a")),
	}

	doc, _, err := NewTransformer().NormalizeRepairs(works)
	if err != nil {
		t.Fatalf("NormalizeRepairs returned error: %v", err)
	}

	var clientIDs []models.Key
	for _, c := range doc.Clients {
		clientIDs = append(clientIDs, c.NIF)
	}

	if want := []models.Key{"300", "100", "200"}; !reflect.DeepEqual(clientIDs, want) {
		t.Errorf("client order = %v, want %v", clientIDs, want)
	}

	var plates []models.Key
	for _, v := range doc.Vehicles {
		plates = append(plates, v.LicensePlate)
	}

	if want := []models.Key{"CC-33-CC", "AA-11-AA", "BB-22-BB"}; !reflect.DeepEqual(plates, want) {
		t.Errorf("vehicle order = %v, want %v", plates, want)
	}

	var codes []models.Key
	for _, o := range doc.Operations {
		codes = append(codes, o.Code)
	}

	if want := []models.Key{"B", "A", "C"}; !reflect.DeepEqual(codes, want) {
		t.Errorf("operation order = %v, want %v", codes, want)
	}

	// Owner sets: distinct nifs that brought the plate in, first-seen order.
	wantOwners := map[models.Key][]models.Key{
		"CC-33-CC": {"300", "100"},
		"AA-11-AA": {"100", "300"},
		"BB-22-BB": {"200"},
	}
	for _, v := range doc.Vehicles {
		if !reflect.DeepEqual(v.Owners, wantOwners[v.LicensePlate]) {
			t.Errorf("owners of %s = %v, want %v", v.LicensePlate, v.Owners, wantOwners[v.LicensePlate])
		}
	}

	// History keeps the client's own input order, not date order.
	carla := doc.Clients[0]
	if carla.RepairHistory[0].Date != "d1" || carla.RepairHistory[1].Date != "d3" {
		t.Errorf("Carla history order = %+v", carla.RepairHistory)
	}

	if want := []models.Key{"C", "B"}; !reflect.DeepEqual(carla.RepairHistory[1].Interventions, want) {
		t.Errorf("Carla interventions = %v, want %v", carla.RepairHistory[1].Interventions, want)
	}

	bruno := doc.Clients[2]
	if bruno.RepairHistory[0].Interventions == nil || len(bruno.RepairHistory[0].Interventions) != 0 {
		t.Errorf("Expected empty, non-nil interventions, got %#v", bruno.RepairHistory[0].Interventions)
	}
}

func TestNormalizeRepairs_RepeatedOwnerIsIdempotent(t *testing.T) {
	works := []models.WorkOrder{
		work("1", "A", "d1", "P-1"),
		work("1", "A", "d2", "P-1"),
		work("1", "A", "d3", "P-1"),
	}

	doc, _, err := NewTransformer().NormalizeRepairs(works)
	if err != nil {
		t.Fatalf("NormalizeRepairs returned error: %v", err)
	}

	if got := doc.Vehicles[0].Owners; !reflect.DeepEqual(got, []models.Key{"1"}) {
		t.Errorf("Owners = %v, want [1]", got)
	}
}

func TestNormalizeRepairs_FirstSightingWins(t *testing.T) {
	works := []models.WorkOrder{
		work("1", "Ana", "d1", "P-1", op("OP1", "Óleo", "Mudança de óleo")),
		work("2", "Rui", "d2", "P-2", op("OP1", "Oleo", "Outra descrição")),
		work("1", "Ana Maria", "d3", "P-1", op("OP1", "Óleo", "Mudança de óleo")),
		work("3", "Eva", "d4", "P-3", op("OP1", "Óleo", "Diferente")),
	}

	doc, summary, err := NewTransformer().NormalizeRepairs(works)
	if err != nil {
		t.Fatalf("NormalizeRepairs returned error: %v", err)
	}

	want := &models.Operation{Code: "OP1", Name: "Óleo", Description: "Mudança de óleo"}
	if len(doc.Operations) != 1 || !reflect.DeepEqual(doc.Operations[0], want) {
		t.Errorf("Operations = %+v, want [%+v]", doc.Operations, want)
	}

	if !reflect.DeepEqual(summary.ConflictingOperations, []models.Key{"OP1"}) {
		t.Errorf("ConflictingOperations = %v, want [OP1]", summary.ConflictingOperations)
	}

	if doc.Clients[0].Name != "Ana" {
		t.Errorf("Client name = %s, want first sighting Ana", doc.Clients[0].Name)
	}
}

func TestNormalizeRepairs_NilVehicle(t *testing.T) {
	works := []models.WorkOrder{{NIF: "1", Name: "A", Date: "d"}}

	if _, _, err := NewTransformer().NormalizeRepairs(works); err == nil {
		t.Fatal("Expected error for record without vehicle")
	}
}

func TestNormalizeRepairs_Empty(t *testing.T) {
	doc, summary, err := NewTransformer().NormalizeRepairs(nil)
	if err != nil {
		t.Fatalf("NormalizeRepairs returned error: %v", err)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	if string(out) != `{"clients":[],"vehicles":[],"operations":[]}` {
		t.Errorf("empty document = %s", out)
	}

	if summary.Records != 0 {
		t.Errorf("Records = %d, want 0", summary.Records)
	}
}

func TestNormalizeRepairs_Deterministic(t *testing.T) {
	works := []models.WorkOrder{
		work("9", "Zé", "d1", "Z-9", op("X", "x", "x"), op("Y", "y", "y")),
		work("8", "Lia", "d2", "Z-9", op("Y", "y", "y")),
		work("7", "Rita", "d3", "Z-8", op("W", "w", "w")),
		work("8", "Lia", "d4", "Z-8"),
	}

	var outputs [][]byte

	for range 5 {
		doc, _, err := NewTransformer().NormalizeRepairs(works)
		if err != nil {
			t.Fatalf("NormalizeRepairs returned error: %v", err)
		}

		out, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("Marshal returned error: %v", err)
		}

		outputs = append(outputs, out)
	}

	for i := 1; i < len(outputs); i++ {
		if !bytes.Equal(outputs[0], outputs[i]) {
			t.Fatalf("run %d differs:\n%s\n%s", i, outputs[0], outputs[i])
		}
	}
}

func TestNormalizeRepairs_DistinctClientCount(t *testing.T) {
	nifs := []string{"1", "2", "1", "3", "2", "4", "4", "1"}

	works := make([]models.WorkOrder, 0, len(nifs))
	distinct := map[string]bool{}

	for i, nif := range nifs {
		works = append(works, work(nif, "n", "d", string(rune('A'+i))))
		distinct[nif] = true
	}

	doc, _, err := NewTransformer().NormalizeRepairs(works)
	if err != nil {
		t.Fatalf("NormalizeRepairs returned error: %v", err)
	}

	if len(doc.Clients) != len(distinct) {
		t.Errorf("Expected %d clients, got %d", len(distinct), len(doc.Clients))
	}

	total := 0
	for _, c := range doc.Clients {
		total += len(c.RepairHistory)
	}

	if total != len(works) {
		t.Errorf("Expected %d history entries in total, got %d", len(works), total)
	}
}
