// Package io reads and writes aggregated package indexes.
//
// # Formats
//
// JSON is the native format: an object mapping package names to their
// resources, newest first, exactly as produced by the catalog aggregator.
// Keys are written in sorted order so exports are diffable:
//
//	{
//	  "cabinet-office-spend": [
//	    {
//	      "description": "Spend over 25k, January",
//	      "file_format": "CSV",
//	      "file_id": "0c8c2c1e",
//	      "mime_type": "text/csv",
//	      "name": "January",
//	      "package_id": "9a1b",
//	      "resource_type": "file",
//	      "created_at": "2023-01-02T09:00:00",
//	      "file_url": "https://example.org/jan.csv"
//	    }
//	  ]
//	}
//
// CSV flattens the index to one row per resource with a leading "package"
// column. CSV is export-only.
//
// # Usage
//
// Use [WriteJSON] or [WriteCSV] for any io.Writer and [Export] to write a
// file in a named [Format]. [ReadJSON] and [ImportJSON] load a JSON export
// back into a [dataset.Index]; created_at values round-trip unchanged,
// including nulls.
package io
