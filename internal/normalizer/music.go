package normalizer

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"datanorm/internal/models"
)

// FindInstrumentID returns the id of the first instrument whose text equals
// name exactly. The second result is false when nothing matches.
func FindInstrumentID(name string, instruments []*models.Record) (any, bool) {
	for _, instrument := range instruments {
		if instrument == nil {
			continue
		}

		text, ok := instrument.Get(models.InstrumentTextField)
		if !ok {
			continue
		}

		if s, isString := text.(string); isString && s == name {
			id, _ := instrument.Get(models.InstrumentIDField)
			return id, true
		}
	}

	return nil, false
}

// LinkInstruments replaces every student's instrument name with an
// InstrumentRef pointing at the instrument catalog. Courses and instruments
// pass through untouched. Students are copied, so ds is not modified.
func (t *Transformer) LinkInstruments(ds *models.MusicDataset) (*models.MusicDocument, *Summary, error) {
	students := make([]*models.Record, 0, len(ds.Students))
	unmatched := orderedmap.New[string, struct{}]()
	linked := 0

	for i, student := range ds.Students {
		if student == nil {
			return nil, nil, fmt.Errorf("%w: %s[%d]", ErrNilRecord, models.StudentsRootKey, i)
		}

		value, ok := student.Get(models.StudentInstrumentField)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s[%d].%s",
				ErrMissingField, models.StudentsRootKey, i, models.StudentInstrumentField)
		}

		name, ok := value.(string)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s[%d].%s is %T, want string",
				ErrInvalidFieldType, models.StudentsRootKey, i, models.StudentInstrumentField, value)
		}

		id, found := FindInstrumentID(name, ds.Instruments)
		if found {
			linked++
		} else {
			unmatched.Set(name, struct{}{})
		}

		out := models.CloneRecord(student)
		out.Set(models.StudentInstrumentField, models.InstrumentRef{ID: id, Text: name})
		students = append(students, out)
	}

	doc := &models.MusicDocument{
		Students:    students,
		Courses:     ds.Courses,
		Instruments: ds.Instruments,
	}

	summary := &Summary{
		Kind:                 models.DatasetMusic,
		Records:              len(ds.Students),
		Students:             len(doc.Students),
		Courses:              len(doc.Courses),
		Instruments:          len(doc.Instruments),
		Linked:               linked,
		UnmatchedInstruments: keys(unmatched),
	}

	return doc, summary, nil
}
