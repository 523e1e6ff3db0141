package models

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Record decoding errors.
var (
	ErrNotARecord     = errors.New("expected an object")
	ErrNotARecordList = errors.New("expected a list of objects")
)

// Record is a passed-through object that keeps its original key order,
// including the order of nested objects.
type Record = orderedmap.OrderedMap[string, any]

// Number is a JSON number from a passed-through record, kept as written so
// large integers and trailing zeros survive re-encoding.
type Number string

// String returns the literal text.
func (n Number) String() string {
	return string(n)
}

// MarshalJSON writes the literal unchanged.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n), nil
}

// MarshalYAML writes the literal as a plain int or float scalar.
func (n Number) MarshalYAML() (interface{}, error) {
	tag := "!!int"
	if strings.ContainsAny(string(n), ".eE") {
		tag = "!!float"
	}

	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(n)}, nil
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return orderedmap.New[string, any]()
}

// CloneRecord copies the top-level pairs of r into a new record.
func CloneRecord(r *Record) *Record {
	out := orderedmap.New[string, any]()
	for pair := r.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}

	return out
}

// decodeCollectionsJSON fills each named list of lists from the matching
// top-level key of data. Unknown keys are ignored.
func decodeCollectionsJSON(data []byte, lists map[string]*[]*Record) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	return jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}

		list, ok := lists[name]
		if !ok {
			return nil
		}

		records, err := recordListFromJSON(value, dataType)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		*list = records

		return nil
	})
}

// recordListFromJSON decodes an array of objects. null yields a nil list and
// null elements yield nil records.
func recordListFromJSON(data []byte, dataType jsonparser.ValueType) ([]*Record, error) {
	switch dataType {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Array:
	default:
		return nil, ErrNotARecordList
	}

	records := make([]*Record, 0)

	var failed error

	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if failed != nil {
			return
		}

		switch dataType {
		case jsonparser.Null:
			records = append(records, nil)
		case jsonparser.Object:
			record, err := recordFromJSON(value)
			if err != nil {
				failed = err
				return
			}

			records = append(records, record)
		default:
			failed = fmt.Errorf("%w at index %d", ErrNotARecordList, len(records))
		}
	})
	if err != nil {
		return nil, err
	}

	return records, failed
}

func recordFromJSON(data []byte) (*Record, error) {
	record := NewRecord()

	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}

		v, err := valueFromJSON(value, dataType)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		record.Set(name, v)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// valueFromJSON mirrors encoding/json's decoding into any, except objects
// become records and numbers keep their literal text.
func valueFromJSON(data []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.String:
		return jsonparser.ParseString(data)
	case jsonparser.Number:
		return Number(data), nil
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(data)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object:
		return recordFromJSON(data)
	case jsonparser.Array:
		items := make([]any, 0)

		var failed error

		_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
			if failed != nil {
				return
			}

			v, err := valueFromJSON(value, dataType)
			if err != nil {
				failed = err
				return
			}

			items = append(items, v)
		})
		if err != nil {
			return nil, err
		}

		return items, failed
	default:
		return nil, fmt.Errorf("unexpected JSON value %q", data)
	}
}

func recordListFromNode(node *yaml.Node) ([]*Record, error) {
	node = resolveAlias(node)

	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}

	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: line %d", ErrNotARecordList, node.Line)
	}

	records := make([]*Record, 0, len(node.Content))

	for i, item := range node.Content {
		item = resolveAlias(item)

		switch {
		case item.Kind == yaml.ScalarNode && item.Tag == "!!null":
			records = append(records, nil)
		case item.Kind == yaml.MappingNode:
			record, err := recordFromNode(item)
			if err != nil {
				return nil, err
			}

			records = append(records, record)
		default:
			return nil, fmt.Errorf("%w at index %d", ErrNotARecordList, i)
		}
	}

	return records, nil
}

func recordFromNode(node *yaml.Node) (*Record, error) {
	record := NewRecord()

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value

		v, err := valueFromNode(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}

		record.Set(key, v)
	}

	return record, nil
}

func valueFromNode(node *yaml.Node) (any, error) {
	node = resolveAlias(node)

	switch node.Kind {
	case yaml.MappingNode:
		return recordFromNode(node)
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))

		for _, item := range node.Content {
			v, err := valueFromNode(item)
			if err != nil {
				return nil, err
			}

			items = append(items, v)
		}

		return items, nil
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}

		return v, nil
	}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	return node
}
