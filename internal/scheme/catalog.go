package scheme

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
)

// Load reads a scheme catalog from the provided reader. The source must be a
// JSON array of scheme objects, or an array of arrays of scheme objects, which
// is flattened one level. Any other top-level structure is a load error. On
// failure an empty catalog is returned together with the error so the caller
// can keep the session alive.
func Load(r io.Reader) (*Schemes, error) {
	var top any
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return &Schemes{}, fmt.Errorf("decoding catalog source: %w", err)
	}

	list, ok := top.([]any)
	if !ok {
		return &Schemes{}, errors.New("catalog source must be a list of scheme records")
	}

	var records []*Record
	cfg := &mapstructure.DecoderConfig{
		Result:           &records,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return &Schemes{}, fmt.Errorf("building catalog decoder: %w", err)
	}

	if err := decoder.Decode(flatten(list)); err != nil {
		return &Schemes{}, fmt.Errorf("decoding scheme records: %w", err)
	}

	for _, record := range records {
		record.Normalize()
	}

	return &Schemes{Items: records}, nil
}

// LoadFile loads the scheme catalog from a JSON file. A missing or malformed
// file yields an empty catalog and an error, never a panic.
func LoadFile(path string) (*Schemes, error) {
	file, err := os.Open(path)
	if err != nil {
		return &Schemes{}, fmt.Errorf("opening catalog file: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// flatten unwraps one level of list nesting so a source shaped as a list of
// lists of records loads identically to an already-flat list. Entries that are
// not objects or lists are dropped.
func flatten(list []any) []any {
	flat := make([]any, 0, len(list))
	for _, entry := range list {
		switch typed := entry.(type) {
		case []any:
			for _, inner := range typed {
				if _, ok := inner.(map[string]any); ok {
					flat = append(flat, inner)
				}
			}
		case map[string]any:
			flat = append(flat, typed)
		}
	}
	return flat
}
