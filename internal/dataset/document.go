package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"datanorm/internal/models"
)

// ErrUnknownDocument is returned when a file is not a normalized document.
var ErrUnknownDocument = errors.New("unrecognized document: expected a top-level \"clients\" or \"alunos\" key")

const clientsRootKey = "clients"

// LoadDocument reads a previously normalized JSON or YAML document back into
// a *models.RepairDocument or *models.MusicDocument.
func LoadDocument(path string) (interface{}, models.DatasetKind, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}

		return nil, "", fmt.Errorf("failed to read document: %w", err)
	}

	encoding := EncodingFromPath(path)

	var root map[string]interface{}
	if err := unmarshal(data, encoding, &root); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrNotAnObject, err)
	}

	var (
		target interface{}
		kind   models.DatasetKind
	)

	switch {
	case hasKey(root, clientsRootKey):
		target, kind = &models.RepairDocument{}, models.DatasetRepairs
	case hasKey(root, models.StudentsRootKey):
		target, kind = &models.MusicDocument{}, models.DatasetMusic
	default:
		return nil, "", ErrUnknownDocument
	}

	if err := unmarshal(data, encoding, target); err != nil {
		return nil, "", fmt.Errorf("failed to decode %s document: %w", kind, err)
	}

	return target, kind, nil
}
