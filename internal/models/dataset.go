// Package models defines the raw and normalized data structures handled by the normalizer.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DatasetKind identifies which dataset layout a document follows.
type DatasetKind string

// Supported dataset kinds.
const (
	DatasetAuto    DatasetKind = "auto"
	DatasetRepairs DatasetKind = "repairs"
	DatasetMusic   DatasetKind = "music"
)

// Top-level keys used to recognize each dataset.
const (
	RepairsRootKey     = "reparacoes"
	StudentsRootKey    = "alunos"
	CoursesRootKey     = "cursos"
	InstrumentsRootKey = "instrumentos"
)

// Key is an identifier that may arrive as a JSON string or a JSON number.
// Numbers keep their literal text so "123" and 123 resolve to the same entity.
type Key string

// UnmarshalJSON accepts strings and numbers. null leaves the key empty.
func (k *Key) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*k = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*k = Key(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or a number, got %s", data)
	}

	*k = Key(n.String())

	return nil
}

// String returns the identifier text.
func (k Key) String() string {
	return string(k)
}
