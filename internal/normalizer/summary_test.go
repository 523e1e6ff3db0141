package normalizer

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"datanorm/internal/models"
)

func TestSummary_Collections(t *testing.T) {
	s := &Summary{Kind: models.DatasetRepairs, Clients: 2, Vehicles: 3, Operations: 4}

	want := []CollectionCount{{"clients", 2}, {"vehicles", 3}, {"operations", 4}}
	if got := s.Collections(); !reflect.DeepEqual(got, want) {
		t.Errorf("Collections() = %v, want %v", got, want)
	}

	if got := (&Summary{}).Collections(); got != nil {
		t.Errorf("Collections() for unknown kind = %v, want nil", got)
	}
}

func TestSummarize_RepairDocument(t *testing.T) {
	doc, _, err := NewTransformer().NormalizeRepairs([]models.WorkOrder{
		work("1", "Ana", "d1", "P-1", op("A", "a", "a")),
		work("1", "Ana", "d2", "P-2", op("B", "b", "b")),
		work("2", "Rui", "d3", "P-2"),
	})
	if err != nil {
		t.Fatalf("NormalizeRepairs returned error: %v", err)
	}

	s, err := Summarize(doc)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if s.Records != 3 || s.Clients != 2 || s.Vehicles != 2 || s.Operations != 2 {
		t.Errorf("Summary = %+v", s)
	}
}

func TestSummarize_DecodedMusicDocument(t *testing.T) {
	raw := `{"alunos": [
		{"id": "A1", "instrumento": {"id": "5", "#text": "Piano"}},
		{"id": "A2", "instrumento": {"id": null, "#text": "Tuba"}}
	], "cursos": [], "instrumentos": [{"id": "5", "#text": "Piano"}]}`

	var doc models.MusicDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	s, err := Summarize(&doc)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if s.Students != 2 || s.Linked != 1 || !reflect.DeepEqual(s.UnmatchedInstruments, []string{"Tuba"}) {
		t.Errorf("Summary = %+v", s)
	}
}

func TestSummarize_WrongType(t *testing.T) {
	if _, err := Summarize(&models.RepairDataset{}); !errors.Is(err, ErrInvalidDataType) {
		t.Errorf("Summarize error = %v, want ErrInvalidDataType", err)
	}
}
