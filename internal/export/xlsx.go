package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/xuri/excelize/v2"

	"datanorm/internal/models"
)

// listSeparator joins identifier lists inside a single cell.
const listSeparator = ", "

// table is one worksheet worth of rows.
type table struct {
	name   string
	header []string
	rows   [][]interface{}
}

// tablesFor lays a normalized document out as worksheets.
func tablesFor(doc interface{}) ([]table, error) {
	switch d := doc.(type) {
	case *models.RepairDocument:
		return repairTables(d), nil
	case *models.MusicDocument:
		return []table{
			recordTable(models.StudentsRootKey, d.Students),
			recordTable(models.CoursesRootKey, d.Courses),
			recordTable(models.InstrumentsRootKey, d.Instruments),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedDocument, doc)
	}
}

func repairTables(d *models.RepairDocument) []table {
	clients := table{name: "clients", header: []string{"nif", "name", "visits"}}
	history := table{name: "repair_history", header: []string{"nif", "date", "vehicle", "interventions"}}

	for _, c := range d.Clients {
		clients.rows = append(clients.rows, []interface{}{c.NIF.String(), c.Name, len(c.RepairHistory)})

		for _, entry := range c.RepairHistory {
			history.rows = append(history.rows, []interface{}{
				c.NIF.String(), entry.Date, entry.Vehicle.String(), joinKeys(entry.Interventions),
			})
		}
	}

	vehicles := table{name: "vehicles", header: []string{"license_plate", "brand", "model", "owners"}}
	for _, v := range d.Vehicles {
		vehicles.rows = append(vehicles.rows, []interface{}{v.LicensePlate.String(), v.Brand, v.Model, joinKeys(v.Owners)})
	}

	operations := table{name: "operations", header: []string{"code", "name", "description"}}
	for _, o := range d.Operations {
		operations.rows = append(operations.rows, []interface{}{o.Code.String(), o.Name, o.Description})
	}

	return []table{clients, history, vehicles, operations}
}

// recordTable builds a sheet whose columns are the union of record keys in
// first-seen order. Linked instruments are split into id and text columns.
func recordTable(name string, records []*models.Record) table {
	columns := orderedmap.New[string, struct{}]()
	cells := make([]map[string]interface{}, 0, len(records))

	for _, r := range records {
		row := make(map[string]interface{})

		if r != nil {
			for pair := r.Oldest(); pair != nil; pair = pair.Next() {
				for _, col := range flatten(pair.Key, pair.Value) {
					columns.Set(col.name, struct{}{})
					row[col.name] = col.value
				}
			}
		}

		cells = append(cells, row)
	}

	t := table{name: name}
	for pair := columns.Oldest(); pair != nil; pair = pair.Next() {
		t.header = append(t.header, pair.Key)
	}

	for _, row := range cells {
		values := make([]interface{}, len(t.header))
		for i, name := range t.header {
			values[i] = row[name]
		}

		t.rows = append(t.rows, values)
	}

	return t
}

// column is one flattened record field.
type column struct {
	name  string
	value interface{}
}

// flatten turns a record field into its sheet columns.
func flatten(key string, value interface{}) []column {
	if ref, ok := value.(models.InstrumentRef); ok {
		return []column{
			{name: key + "." + models.InstrumentIDField, value: cellValue(ref.ID)},
			{name: key + "." + models.InstrumentTextField, value: ref.Text},
		}
	}

	return []column{{name: key, value: cellValue(value)}}
}

// cellValue keeps scalars as they are and JSON-encodes anything nested.
func cellValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return ""
	case string, bool, float64, int, int64:
		return v
	case models.Number:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(data)
	}
}

func joinKeys(keys []models.Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}

	return strings.Join(parts, listSeparator)
}

func encodeXLSX(out io.Writer, doc interface{}) error {
	tables, err := tablesFor(doc)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.name); err != nil {
			return err
		}

		header := make([]interface{}, len(t.header))
		for j, h := range t.header {
			header[j] = h
		}

		if err := writeRow(f, t.name, 1, header); err != nil {
			return err
		}

		for r, row := range t.rows {
			if err := writeRow(f, t.name, r+2, row); err != nil {
				return err
			}
		}
	}

	f.SetActiveSheet(0)

	_, err = f.WriteTo(out)

	return err
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	return f.SetSheetRow(sheet, cell, &values)
}
