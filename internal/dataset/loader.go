// Package dataset reads raw dataset files and recognizes their layout.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"datanorm/internal/models"
)

// Loader errors.
var (
	ErrInputNotFound  = errors.New("input file not found")
	ErrUnknownDataset = errors.New("unrecognized dataset: expected a top-level \"reparacoes\" or \"alunos\" key")
	ErrNotAnObject    = errors.New("dataset root must be an object")
)

// Input encodings.
const (
	EncodingJSON = "json"
	EncodingYAML = "yaml"
)

// EncodingFromPath picks the decoder for a file from its extension.
func EncodingFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return EncodingYAML
	default:
		return EncodingJSON
	}
}

// Load reads path and decodes it as the requested dataset kind.
// With models.DatasetAuto the kind is detected from the top-level keys.
func Load(path string, kind models.DatasetKind) (interface{}, models.DatasetKind, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}

		return nil, "", fmt.Errorf("failed to read input: %w", err)
	}

	return Decode(data, EncodingFromPath(path), kind)
}

// Decode parses raw bytes into a *models.RepairDataset or *models.MusicDataset.
func Decode(data []byte, encoding string, kind models.DatasetKind) (interface{}, models.DatasetKind, error) {
	if kind == "" || kind == models.DatasetAuto {
		detected, err := Detect(data, encoding)
		if err != nil {
			return nil, "", err
		}

		kind = detected
	}

	var target interface{}

	switch kind {
	case models.DatasetRepairs:
		target = &models.RepairDataset{}
	case models.DatasetMusic:
		target = &models.MusicDataset{}
	default:
		return nil, "", fmt.Errorf("%w: kind %q", ErrUnknownDataset, kind)
	}

	if err := unmarshal(data, encoding, target); err != nil {
		return nil, "", fmt.Errorf("failed to decode %s dataset: %w", kind, err)
	}

	return target, kind, nil
}

// Detect reports which dataset layout data follows.
func Detect(data []byte, encoding string) (models.DatasetKind, error) {
	var root map[string]interface{}

	if err := unmarshal(data, encoding, &root); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotAnObject, err)
	}

	if root == nil {
		return "", ErrNotAnObject
	}

	switch {
	case hasKey(root, models.RepairsRootKey):
		return models.DatasetRepairs, nil
	case hasKey(root, models.StudentsRootKey):
		return models.DatasetMusic, nil
	default:
		return "", ErrUnknownDataset
	}
}

func hasKey(m map[string]interface{}, key string) bool {
	_, ok := m[key]
	return ok
}

func unmarshal(data []byte, encoding string, v interface{}) error {
	if encoding == EncodingYAML {
		return yaml.Unmarshal(data, v)
	}

	return json.Unmarshal(data, v)
}
