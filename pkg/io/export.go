package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/ckanindex/pkg/dataset"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat returns the Format named by s (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or csv)", s)
	}
}

// csvHeader lists the CSV columns in order.
var csvHeader = []string{
	"package", "file_id", "name", "description", "file_format", "mime_type",
	"resource_type", "created_at", "file_url", "package_id",
}

// WriteJSON encodes idx as indented JSON with sorted keys.
func WriteJSON(idx dataset.Index, w io.Writer) error {
	if idx == nil {
		idx = dataset.Index{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteCSV writes one row per resource, packages in sorted order and
// resources in index order.
func WriteCSV(idx dataset.Index, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, name := range idx.Keys() {
		for _, r := range idx[name] {
			row := []string{
				name, r.FileID, r.Name, r.Description, r.FileFormat, r.MimeType,
				r.ResourceType, r.CreatedAt.Text(), r.FileURL, r.PackageID,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write encodes idx in format f.
func Write(idx dataset.Index, f Format, w io.Writer) error {
	switch f {
	case FormatJSON, "":
		return WriteJSON(idx, w)
	case FormatCSV:
		return WriteCSV(idx, w)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

// Export writes idx to the file at path. The file is only created once the
// index has been encoded successfully.
func Export(idx dataset.Index, path string, f Format) error {
	var buf bytes.Buffer
	if err := Write(idx, f, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
