package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrDocumentNotObject = errors.New("service document must be a JSON object")

// Document is the open-ended listing payload stored in services.data.
type Document map[string]any

// DecodeDocument parses a JSON object, keeping numbers as json.Number so they round-trip unchanged.
func DecodeDocument(raw []byte) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrDocumentNotObject
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after service document")
	}
	return doc, nil
}

func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(Document(val).Clone())
	case Document:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// Merge overwrites top-level keys of d with the keys of patch.
func (d Document) Merge(patch Document) Document {
	out := d.Clone()
	if out == nil {
		out = Document{}
	}
	for k, v := range patch {
		out[k] = cloneValue(v)
	}
	return out
}

// Without returns a copy of d with the given keys removed.
func (d Document) Without(keys ...string) Document {
	out := d.Clone()
	if out == nil {
		return Document{}
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func (d Document) String(key string) (string, bool) {
	v, ok := d[key].(string)
	return v, ok
}
