package ckan

import (
	"bytes"
	"encoding/json"
)

// Action names a CKAN action endpoint. Only read-only actions are supported.
type Action string

// Actions consumed by ckanindex.
const (
	ActionPackageList      Action = "package_list"
	ActionOrganizationList Action = "organization_list"
	ActionPackageSearch    Action = "package_search"
	ActionOrganizationShow Action = "organization_show"
	ActionPackageShow      Action = "package_show"
)

// envelope is the wrapper around every CKAN action response.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *APIError       `json:"error"`
}

// APIError is the error object of a failed action.
type APIError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

// String formats the error the way it is logged: "<__type> : <message>".
func (e *APIError) String() string {
	if e == nil {
		return " : "
	}
	return e.Type + " : " + e.Message
}

// SearchResult is the result of package_search.
type SearchResult struct {
	Count   int       `json:"count"`
	Results []Package `json:"results"`
}

// Package is a catalog package (a dataset entry) as returned by package_show
// and package_search.
type Package struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Title            string        `json:"title"`
	Notes            string        `json:"notes"`
	MetadataModified string        `json:"metadata_modified"`
	NumResources     int           `json:"num_resources"`
	Organization     *Organization `json:"organization"`
	Resources        []Resource    `json:"resources"`
}

// Resource is a single downloadable artifact of a package.
//
// Created is kept as raw JSON: the catalog returns a timestamp string for
// most resources but null or other types for some, and normalization must be
// able to tell these apart. The other fields are [Text] so one oddly typed
// value does not fail the whole page it arrived on.
type Resource struct {
	ID           Text            `json:"id"`
	Name         Text            `json:"name"`
	Description  Text            `json:"description"`
	Format       Text            `json:"format"`
	Mimetype     Text            `json:"mimetype"`
	PackageID    Text            `json:"package_id"`
	ResourceType Text            `json:"resource_type"`
	URL          Text            `json:"url"`
	Created      json.RawMessage `json:"created"`
}

// Text is a string field that also accepts other JSON types. Strings decode
// as themselves, null as "", and anything else as its compact JSON text.
type Text string

// UnmarshalJSON implements lenient decoding.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*t = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return err
	}
	*t = Text(buf.String())
	return nil
}

// Organization is the result of organization_show.
type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Created      string    `json:"created"`
	PackageCount int       `json:"package_count"`
	Packages     []Package `json:"packages,omitempty"`
}
