package io_test

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/ckanindex/pkg/dataset"
	ckanio "github.com/matzehuels/ckanindex/pkg/io"
)

func ExampleWriteJSON() {
	idx := dataset.Index{
		"spend": {{
			FileID:     "r1",
			Name:       "January",
			FileFormat: "CSV",
			CreatedAt:  dataset.NewTimestamp(json.RawMessage(`"2023-01-01T09:00:00"`)),
			FileURL:    "https://example.org/jan.csv",
		}},
	}
	if err := ckanio.WriteJSON(idx, os.Stdout); err != nil {
		fmt.Println("Error:", err)
	}
	// Output:
	// {
	//   "spend": [
	//     {
	//       "description": "",
	//       "file_format": "CSV",
	//       "file_id": "r1",
	//       "mime_type": "",
	//       "name": "January",
	//       "package_id": "",
	//       "resource_type": "",
	//       "created_at": "2023-01-01T09:00:00",
	//       "file_url": "https://example.org/jan.csv"
	//     }
	//   ]
	// }
}
