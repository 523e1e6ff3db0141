package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Field names inside music school records.
const (
	StudentInstrumentField = "instrumento"
	InstrumentIDField      = "id"
	InstrumentTextField    = "#text"
)

// MusicDataset is the raw music school export.
type MusicDataset struct {
	Students    []*Record `json:"alunos" yaml:"alunos" validate:"required"`
	Courses     []*Record `json:"cursos" yaml:"cursos" validate:"required"`
	Instruments []*Record `json:"instrumentos" yaml:"instrumentos" validate:"required"`
}

// UnmarshalJSON decodes the three lists keeping nested key order.
func (d *MusicDataset) UnmarshalJSON(data []byte) error {
	return decodeCollectionsJSON(data, d.collections())
}

// UnmarshalYAML decodes the three lists keeping nested key order.
func (d *MusicDataset) UnmarshalYAML(value *yaml.Node) error {
	return decodeCollectionsYAML(value, d.collections())
}

func (d *MusicDataset) collections() map[string]*[]*Record {
	return map[string]*[]*Record{
		StudentsRootKey:    &d.Students,
		CoursesRootKey:     &d.Courses,
		InstrumentsRootKey: &d.Instruments,
	}
}

// MusicDocument is the music dataset with student instruments linked by id.
type MusicDocument struct {
	Students    []*Record `json:"alunos" yaml:"alunos"`
	Courses     []*Record `json:"cursos" yaml:"cursos"`
	Instruments []*Record `json:"instrumentos" yaml:"instrumentos"`
}

// UnmarshalJSON decodes a previously written document.
func (d *MusicDocument) UnmarshalJSON(data []byte) error {
	return decodeCollectionsJSON(data, d.collections())
}

// UnmarshalYAML decodes a previously written document.
func (d *MusicDocument) UnmarshalYAML(value *yaml.Node) error {
	return decodeCollectionsYAML(value, d.collections())
}

func (d *MusicDocument) collections() map[string]*[]*Record {
	return map[string]*[]*Record{
		StudentsRootKey:    &d.Students,
		CoursesRootKey:     &d.Courses,
		InstrumentsRootKey: &d.Instruments,
	}
}

func decodeCollectionsYAML(value *yaml.Node, lists map[string]*[]*Record) error {
	if value.Kind == yaml.DocumentNode && len(value.Content) > 0 {
		value = value.Content[0]
	}

	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d", ErrNotARecord, value.Line)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		list, ok := lists[value.Content[i].Value]
		if !ok {
			continue
		}

		records, err := recordListFromNode(value.Content[i+1])
		if err != nil {
			return fmt.Errorf("%s: %w", value.Content[i].Value, err)
		}

		*list = records
	}

	return nil
}

// InstrumentRef replaces a student's plain instrument name.
// ID is nil when no instrument carries that name.
type InstrumentRef struct {
	ID   any    `json:"id" yaml:"id"`
	Text string `json:"#text" yaml:"#text"`
}
