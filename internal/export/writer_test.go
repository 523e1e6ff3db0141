package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"datanorm/internal/config"
	"datanorm/internal/models"
)

func sampleRepairs() *models.RepairDocument {
	return &models.RepairDocument{
		Clients: []*models.Client{{
			Name: "João <Silva> & Filhos",
			NIF:  "123",
			RepairHistory: []models.RepairEntry{
				{Date: "2024-01-10", Vehicle: "AA-11-BB", Interventions: []models.Key{"OP1", "OP2"}},
				{Date: "2024-02-11", Vehicle: "AA-11-BB", Interventions: []models.Key{}},
			},
		}},
		Vehicles: []*models.Vehicle{
			{Brand: "Citroën", Model: "C3", LicensePlate: "AA-11-BB", Owners: []models.Key{"123", "456"}},
		},
		Operations: []*models.Operation{
			{Code: "OP1", Name: "Óleo", Description: "Mudança de óleo"},
			{Code: "OP2", Name: "Travões", Description: "Pastilhas"},
		},
	}
}

func sampleMusic(t *testing.T) *models.MusicDocument {
	t.Helper()

	student := models.NewRecord()
	if err := json.Unmarshal([]byte(`{"id": "A1", "nome": "Rita", "anoCurso": 2}`), student); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}

	student.Set(models.StudentInstrumentField, models.InstrumentRef{ID: "I1", Text: "Piano"})

	orphan := models.NewRecord()
	orphan.Set("id", "A2")
	orphan.Set(models.StudentInstrumentField, models.InstrumentRef{Text: "Tuba"})
	orphan.Set("extra", []interface{}{"x", float64(1)})

	instrument := models.NewRecord()
	instrument.Set("id", "I1")
	instrument.Set(models.InstrumentTextField, "Piano")

	return &models.MusicDocument{
		Students:    []*models.Record{student, orphan},
		Courses:     []*models.Record{},
		Instruments: []*models.Record{instrument},
	}
}

func TestWriter_EncodeJSON(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(Options{Format: config.FormatJSON, Indent: 4}, nil)
	if err := w.Encode(&buf, sampleRepairs()); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	out := buf.String()

	for _, want := range []string{
		`"name": "João <Silva> & Filhos"`,
		`"brand": "Citroën"`,
		"\n    \"clients\": [",
		`"interventions": []`,
		`"owners": [`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, `\u00`) || strings.Contains(out, `\u003c`) {
		t.Errorf("JSON output should keep characters literal:\n%s", out)
	}

	if !strings.HasSuffix(out, "}\n") {
		t.Error("JSON output should end with a newline")
	}

	if strings.Index(out, `"clients"`) > strings.Index(out, `"vehicles"`) ||
		strings.Index(out, `"vehicles"`) > strings.Index(out, `"operations"`) {
		t.Error("collections should appear as clients, vehicles, operations")
	}
}

func TestWriter_EncodeJSON_Compact(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(Options{Format: config.FormatJSON}, nil)
	if err := w.Encode(&buf, &models.RepairDocument{}); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if got := buf.String(); got != "{\"clients\":null,\"vehicles\":null,\"operations\":null}\n" {
		t.Errorf("compact output = %q", got)
	}
}

func TestWriter_EncodeYAML(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(Options{Format: config.FormatYAML, Indent: 2}, nil)
	if err := w.Encode(&buf, sampleMusic(t)); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	var decoded models.MusicDocument
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}

	if len(decoded.Students) != 2 {
		t.Fatalf("Expected 2 students, got %d", len(decoded.Students))
	}

	ref, _ := decoded.Students[1].Get(models.StudentInstrumentField)

	m, ok := ref.(*models.Record)
	if !ok {
		t.Fatalf("instrument decoded as %T", ref)
	}

	id, _ := m.Get(models.InstrumentIDField)
	text, _ := m.Get(models.InstrumentTextField)

	if id != nil || text != "Tuba" {
		t.Errorf("unmatched instrument = %v/%v, want id null and text Tuba", id, text)
	}

	if m.Oldest().Key != models.InstrumentIDField {
		t.Errorf("instrument keys reordered, first = %s", m.Oldest().Key)
	}

	if first := decoded.Students[0].Oldest(); first.Key != "id" {
		t.Errorf("first student key = %s, want id", first.Key)
	}
}

func TestWriter_EncodeUnsupported(t *testing.T) {
	w := NewWriter(Options{Format: "csv"}, nil)
	if err := w.Encode(&bytes.Buffer{}, sampleRepairs()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Encode error = %v, want ErrUnsupportedFormat", err)
	}

	x := NewWriter(Options{Format: config.FormatXLSX}, nil)
	if err := x.Encode(&bytes.Buffer{}, "not a document"); !errors.Is(err, ErrUnsupportedDocument) {
		t.Errorf("Encode error = %v, want ErrUnsupportedDocument", err)
	}
}

func TestWriter_WriteFile_XLSXRepairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "new_dataset.xlsx")

	w := NewWriter(Options{Format: config.FormatXLSX}, nil)
	if err := w.WriteFile(path, sampleRepairs()); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile returned error: %v", err)
	}
	defer f.Close()

	want := []string{"clients", "repair_history", "vehicles", "operations"}
	if got := f.GetSheetList(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("sheets = %v, want %v", got, want)
	}

	rows, err := f.GetRows("vehicles")
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}

	if len(rows) != 2 || rows[1][0] != "AA-11-BB" || rows[1][3] != "123, 456" {
		t.Errorf("vehicles rows = %v", rows)
	}

	history, err := f.GetRows("repair_history")
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}

	if len(history) != 3 || history[1][3] != "OP1, OP2" {
		t.Errorf("repair_history rows = %v", history)
	}
}

func TestWriter_WriteFile_XLSXMusic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new_music_dataset.xlsx")

	w := NewWriter(Options{Format: config.FormatXLSX}, nil)
	if err := w.WriteFile(path, sampleMusic(t)); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile returned error: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(models.StudentsRootKey)
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}

	wantHeader := "id,nome,anoCurso,instrumento.id,instrumento.#text,extra"
	if len(rows) != 3 || strings.Join(rows[0], ",") != wantHeader {
		t.Fatalf("alunos rows = %v", rows)
	}

	if rows[1][3] != "I1" || rows[1][4] != "Piano" {
		t.Errorf("linked student row = %v", rows[1])
	}

	if rows[2][4] != "Tuba" || rows[2][5] != `["x",1]` {
		t.Errorf("unmatched student row = %v", rows[2])
	}
}

func TestWriteAtomic_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new_dataset.json")

	if err := WriteAtomic(path, []byte("first"), false); err != nil {
		t.Fatalf("WriteAtomic returned error: %v", err)
	}

	if err := WriteAtomic(path, []byte("second"), false); err != nil {
		t.Fatalf("WriteAtomic returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "second" {
		t.Fatalf("output = %q, %v; want second", data, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}

	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}

		t.Errorf("expected only the output file, found %v", names)
	}
}

func TestWriteAtomic_Backup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new_dataset.json")

	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := WriteAtomic(path, []byte("new"), true); err != nil {
		t.Fatalf("WriteAtomic returned error: %v", err)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil || string(backup) != "old" {
		t.Errorf("backup = %q, %v; want old", backup, err)
	}

	current, err := os.ReadFile(path)
	if err != nil || string(current) != "new" {
		t.Errorf("output = %q, %v; want new", current, err)
	}
}

func TestWriter_WriteFile_EncodeFailureKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new_dataset.xlsx")

	if err := os.WriteFile(path, []byte("previous"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	w := NewWriter(Options{Format: config.FormatXLSX}, nil)
	if err := w.WriteFile(path, 42); err == nil {
		t.Fatal("WriteFile expected error for unsupported document")
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "previous" {
		t.Errorf("existing output changed: %q, %v", data, err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.OutputConfig{Format: "yaml", Indent: 2, CreateBackup: true})
	if opts.Format != "yaml" || opts.Indent != 2 || !opts.CreateBackup {
		t.Errorf("OptionsFromConfig = %+v", opts)
	}
}
