package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/ckanindex/pkg/dataset"
)

// ReadJSON decodes an index written by [WriteJSON].
//
// Resources are kept in file order; ReadJSON does not re-sort them.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (dataset.Index, error) {
	var idx dataset.Index
	if err := json.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if idx == nil {
		idx = dataset.Index{}
	}
	return idx, nil
}

// ImportJSON reads the index stored at path.
func ImportJSON(path string) (dataset.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
