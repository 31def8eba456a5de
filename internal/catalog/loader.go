package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// MinCatalogSize is the smallest AllPrintings file accepted as fully formed.
// Anything at or below it is an interrupted or placeholder build.
const MinCatalogSize int64 = 2000

// CheckReady verifies that the catalog file at path exists and is larger
// than minSize bytes.
func CheckReady(path string, minSize int64) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return &NotReadyError{Path: path, Reason: "file not found"}
	}
	if err != nil {
		return fmt.Errorf("stat catalog: %w", err)
	}
	if info.IsDir() {
		return &NotReadyError{Path: path, Reason: "path is a directory"}
	}
	if info.Size() <= minSize {
		return &NotReadyError{
			Path:   path,
			Reason: fmt.Sprintf("file not fully formed (%d bytes)", info.Size()),
		}
	}
	return nil
}

// Load checks readiness and decodes the catalog at path. Both the
// {"meta": ..., "data": {...}} envelope and a bare set-code mapping are
// accepted.
func Load(path string) (*Catalog, error) {
	if err := CheckReady(path, MinCatalogSize); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	cat, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	if err := cat.Ready(); err != nil {
		return nil, &NotReadyError{Path: path, Reason: "catalog contains no sets"}
	}
	return cat, nil
}

// Decode parses catalog JSON.
func Decode(data []byte) (*Catalog, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}

	if inner, ok := top["data"]; ok {
		var sets map[string]*Set
		if err := json.Unmarshal(inner, &sets); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
		return New(sets), nil
	}

	sets := make(map[string]*Set, len(top))
	for code, raw := range top {
		if code == "meta" {
			continue
		}
		var set Set
		if err := json.Unmarshal(raw, &set); err != nil {
			return nil, fmt.Errorf("decode set %s: %w", code, err)
		}
		sets[code] = &set
	}
	return New(sets), nil
}
