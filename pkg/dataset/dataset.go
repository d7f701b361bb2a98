// Package dataset defines the normalized view of catalog resources and the
// normalizer that builds it.
//
// # Overview
//
// The catalog returns packages with loosely typed resource records. [Normalize]
// maps every resource of every package into a [Resource], a uniform read-only
// record, and groups them into an [Index] keyed by package name:
//
//	idx := dataset.Normalize(searchResult.Results)
//	for _, name := range idx.Keys() {
//	    latest := idx[name][0] // newest resource first, when sortable
//	}
//
// # Ordering
//
// Resources of a package are sorted by creation time, newest first. If any
// resource of a package lacks a usable creation time the package keeps the
// order the catalog returned. Normalization never fails.
package dataset

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Resource is a single downloadable file of a package. Values are copied
// verbatim from the catalog.
type Resource struct {
	Description  string    `json:"description"`
	FileFormat   string    `json:"file_format"`
	FileID       string    `json:"file_id"`
	MimeType     string    `json:"mime_type"`
	Name         string    `json:"name"`
	PackageID    string    `json:"package_id"`
	ResourceType string    `json:"resource_type"`
	CreatedAt    Timestamp `json:"created_at"`
	FileURL      string    `json:"file_url"`
}

// Timestamp is a raw "created" value. The catalog normally sends an ISO-8601
// string but may send null or another JSON type; the raw value is preserved so
// exports round-trip exactly.
type Timestamp struct {
	raw json.RawMessage
}

// NewTimestamp wraps a raw JSON value. Empty input means "missing".
func NewTimestamp(raw json.RawMessage) Timestamp {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Timestamp{}
	}
	return Timestamp{raw: slices.Clone(raw)}
}

// Value returns the timestamp text if the raw value is a JSON string.
func (t Timestamp) Value() (string, bool) {
	if len(t.raw) == 0 || t.raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(t.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Number returns the value if the raw value is a JSON number.
func (t Timestamp) Number() (float64, bool) {
	if len(t.raw) == 0 {
		return 0, false
	}
	if c := t.raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(t.raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// IsZero reports whether the value is missing or null.
func (t Timestamp) IsZero() bool { return len(t.raw) == 0 }

// Text returns a display form: the string value, the raw JSON for other
// types, or "" when missing.
func (t Timestamp) Text() string {
	if s, ok := t.Value(); ok {
		return s
	}
	return string(t.raw)
}

// MarshalJSON emits the raw value, or null when missing.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if len(t.raw) == 0 {
		return []byte("null"), nil
	}
	return t.raw, nil
}

// UnmarshalJSON stores the raw value.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	*t = NewTimestamp(b)
	return nil
}
