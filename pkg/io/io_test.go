package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/ckanindex/pkg/dataset"
)

func sampleIndex() dataset.Index {
	return dataset.Index{
		"spend": {
			{FileID: "r2", Name: "February", FileFormat: "CSV", CreatedAt: dataset.NewTimestamp(json.RawMessage(`"2023-02-01"`))},
			{FileID: "r1", Name: "January, revised", FileFormat: "CSV", CreatedAt: dataset.NewTimestamp(json.RawMessage(`"2023-01-01"`))},
		},
		"archive": {
			{FileID: "a1", Name: "Old", FileFormat: "ZIP"},
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleIndex(), &buf); err != nil {
		t.Fatal(err)
	}
	if i, j := strings.Index(buf.String(), `"archive"`), strings.Index(buf.String(), `"spend"`); i > j {
		t.Error("keys should be written in sorted order")
	}
	if !strings.Contains(buf.String(), `"created_at": null`) {
		t.Errorf("missing timestamp should encode as null:\n%s", buf.String())
	}

	idx, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 2 || idx.ResourceCount() != 3 {
		t.Fatalf("ReadJSON() = %d packages, %d resources", idx.Len(), idx.ResourceCount())
	}
	if idx["spend"][0].FileID != "r2" {
		t.Errorf("resource order changed: %+v", idx["spend"])
	}
	if s, ok := idx["spend"][1].CreatedAt.Value(); !ok || s != "2023-01-01" {
		t.Errorf("CreatedAt = %q, %v", s, ok)
	}
	if !idx["archive"][0].CreatedAt.IsZero() {
		t.Error("null created_at should decode as zero")
	}
}

func TestWriteJSONNil(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(nil, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "{}" {
		t.Errorf("WriteJSON(nil) = %q, want {}", buf.String())
	}
}

func TestReadJSONInvalid(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader(`[1, 2]`)); err == nil {
		t.Error("ReadJSON() should reject a non-object")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(sampleIndex(), &buf); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	if rows[0][0] != "package" || rows[0][7] != "created_at" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "archive" || rows[2][1] != "r2" || rows[3][1] != "r1" {
		t.Errorf("row order = %v", rows[1:])
	}
	if rows[3][2] != "January, revised" || rows[3][7] != "2023-01-01" {
		t.Errorf("row = %v", rows[3])
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{" json ", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	if err := Export(sampleIndex(), path, FormatJSON); err != nil {
		t.Fatal(err)
	}
	idx, err := ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 2 {
		t.Errorf("ImportJSON() = %d packages", idx.Len())
	}

	csvPath := filepath.Join(dir, "index.csv")
	if err := Export(sampleIndex(), csvPath, FormatCSV); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "package,file_id") {
		t.Errorf("csv starts with %q", string(data)[:20])
	}

	if err := Export(sampleIndex(), filepath.Join(dir, "x.xml"), "xml"); err == nil {
		t.Error("Export() with unknown format should fail")
	}
	if _, err := os.Stat(filepath.Join(dir, "x.xml")); !os.IsNotExist(err) {
		t.Error("failed export should not create a file")
	}
}

func TestImportJSONMissing(t *testing.T) {
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportJSON() of missing file should fail")
	}
}
