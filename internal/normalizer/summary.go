package normalizer

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"datanorm/internal/models"
)

// Summary describes what a normalization run produced.
type Summary struct {
	Kind    models.DatasetKind
	Records int

	Clients    int
	Vehicles   int
	Operations int
	// ConflictingOperations lists codes seen again with a different name or
	// description. The first sighting was kept.
	ConflictingOperations []models.Key

	Students    int
	Courses     int
	Instruments int
	Linked      int
	// UnmatchedInstruments lists student instrument names with no catalog entry.
	UnmatchedInstruments []string
}

// CollectionCount is the size of one output collection.
type CollectionCount struct {
	Name  string
	Count int
}

// Collections returns the output collection sizes in document order.
func (s *Summary) Collections() []CollectionCount {
	switch s.Kind {
	case models.DatasetRepairs:
		return []CollectionCount{
			{Name: "clients", Count: s.Clients},
			{Name: "vehicles", Count: s.Vehicles},
			{Name: "operations", Count: s.Operations},
		}
	case models.DatasetMusic:
		return []CollectionCount{
			{Name: models.StudentsRootKey, Count: s.Students},
			{Name: models.CoursesRootKey, Count: s.Courses},
			{Name: models.InstrumentsRootKey, Count: s.Instruments},
		}
	default:
		return nil
	}
}

// Summarize rebuilds a summary from an already normalized document.
// Conflicts cannot be recovered from output and are left empty.
func Summarize(doc interface{}) (*Summary, error) {
	switch d := doc.(type) {
	case *models.RepairDocument:
		records := 0
		for _, c := range d.Clients {
			records += len(c.RepairHistory)
		}

		return &Summary{
			Kind:       models.DatasetRepairs,
			Records:    records,
			Clients:    len(d.Clients),
			Vehicles:   len(d.Vehicles),
			Operations: len(d.Operations),
		}, nil
	case *models.MusicDocument:
		s := &Summary{
			Kind:        models.DatasetMusic,
			Records:     len(d.Students),
			Students:    len(d.Students),
			Courses:     len(d.Courses),
			Instruments: len(d.Instruments),
		}

		unmatched := orderedmap.New[string, struct{}]()

		for _, student := range d.Students {
			if student == nil {
				continue
			}

			id, text, ok := instrumentLink(student)
			if !ok {
				continue
			}

			if id == nil {
				unmatched.Set(text, struct{}{})
			} else {
				s.Linked++
			}
		}

		s.UnmatchedInstruments = keys(unmatched)

		return s, nil
	default:
		return nil, ErrInvalidDataType
	}
}

// instrumentLink reads a rewritten student instrument, either as built by
// LinkInstruments or as a record decoded back from JSON/YAML.
func instrumentLink(student *models.Record) (id any, text string, ok bool) {
	value, present := student.Get(models.StudentInstrumentField)
	if !present {
		return nil, "", false
	}

	switch ref := value.(type) {
	case models.InstrumentRef:
		return ref.ID, ref.Text, true
	case *models.InstrumentRef:
		return ref.ID, ref.Text, true
	case *models.Record:
		if ref == nil {
			return nil, "", false
		}

		id, _ = ref.Get(models.InstrumentIDField)
		raw, _ := ref.Get(models.InstrumentTextField)
		text, _ = raw.(string)

		return id, text, true
	default:
		return nil, "", false
	}
}
