package normalizer

import (
	"errors"

	"datanorm/internal/models"
)

// ErrInvalidTransformerDataType is returned when the data type is invalid.
var ErrInvalidTransformerDataType = errors.New("invalid data type: expected *models.RepairDataset or *models.MusicDataset")

// Transformer handles data format transformations.
type Transformer struct{}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform converts a raw dataset into its normalized document.
func (t *Transformer) Transform(data interface{}) (interface{}, *Summary, error) {
	switch ds := data.(type) {
	case *models.RepairDataset:
		if ds == nil {
			return nil, nil, ErrInvalidTransformerDataType
		}

		return t.NormalizeRepairs(ds.Works)
	case *models.MusicDataset:
		if ds == nil {
			return nil, nil, ErrInvalidTransformerDataType
		}

		return t.LinkInstruments(ds)
	default:
		return nil, nil, ErrInvalidTransformerDataType
	}
}
