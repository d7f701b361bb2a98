// Package ckantest provides an in-memory CKAN action API for tests.
//
// The server implements the read-only actions used by ckanindex
// (package_list, organization_list, package_search, organization_show and
// package_show), counts requests per action and can inject failures.
//
//	srv := ckantest.NewServer(t)
//	srv.AddOrganization("cabinet-office", ckantest.Packages("cabinet-office", 250)...)
//	client := ckan.NewClient(ckan.Options{BaseURL: srv.BaseURL()})
package ckantest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/ckanindex/pkg/integrations/ckan"
)

// DefaultRows is the package_search page size when rows is not given.
const DefaultRows = 10

// Server is a fake CKAN action API backed by httptest.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	orgs      []string
	packages  map[string][]ckan.Package
	calls     map[ckan.Action]int
	starts    []int
	failStart map[int]bool
	failing   map[ckan.Action]bool
	apiErrors map[ckan.Action]ckan.APIError
	counts    map[string]int
}

// NewServer starts a fake catalog that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{
		packages:  make(map[string][]ckan.Package),
		calls:     make(map[ckan.Action]int),
		failStart: make(map[int]bool),
		failing:   make(map[ckan.Action]bool),
		apiErrors: make(map[ckan.Action]ckan.APIError),
		counts:    make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the action API base URL of the fake.
func (s *Server) BaseURL() string { return s.URL + "/api/3/action" }

// AddOrganization registers an organization and its packages.
func (s *Server) AddOrganization(name string, pkgs ...ckan.Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs = append(s.orgs, name)
	org := &ckan.Organization{ID: name + "-id", Name: name, Title: name}
	pkgs = slices.Clone(pkgs)
	for i := range pkgs {
		pkgs[i].Organization = org
	}
	s.packages[name] = append(s.packages[name], pkgs...)
}

// SetCount overrides the package count reported for an organization by
// package_search and organization_show.
func (s *Server) SetCount(org string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[org] = n
}

// FailStart makes package_search requests with the given start offset fail
// with HTTP 500.
func (s *Server) FailStart(start int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStart[start] = true
}

// Fail makes every request for action fail with HTTP 500 until Recover.
func (s *Server) Fail(action ckan.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[action] = true
}

// Recover undoes [Server.Fail] and [Server.APIError] for action.
func (s *Server) Recover(action ckan.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failing, action)
	delete(s.apiErrors, action)
}

// APIError makes action answer with success=false and the given error.
func (s *Server) APIError(action ckan.Action, kind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiErrors[action] = ckan.APIError{Type: kind, Message: message}
}

// Calls returns how many requests were made for action.
func (s *Server) Calls(action ckan.Action) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[action]
}

// Starts returns the sorted start offsets of all package_search requests
// that asked for at least one row.
func (s *Server) Starts() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.starts)
	slices.Sort(out)
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	action := ckan.Action(path.Base(r.URL.Path))
	q := r.URL.Query()

	s.mu.Lock()
	s.calls[action]++
	failing := s.failing[action]
	apiErr, hasAPIErr := s.apiErrors[action]
	s.mu.Unlock()

	if failing {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if hasAPIErr {
		writeError(w, http.StatusConflict, apiErr.Type, apiErr.Message)
		return
	}

	switch action {
	case ckan.ActionOrganizationList:
		s.mu.Lock()
		orgs := slices.Clone(s.orgs)
		s.mu.Unlock()
		writeResult(w, orgs)
	case ckan.ActionPackageList:
		writeResult(w, s.allPackageNames())
	case ckan.ActionPackageSearch:
		s.search(w, q.Get("fq"), q.Get("start"), q.Get("rows"))
	case ckan.ActionOrganizationShow:
		s.showOrganization(w, q.Get("id"))
	case ckan.ActionPackageShow:
		s.showPackage(w, q.Get("id"))
	default:
		writeError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("unknown action %q", action))
	}
}

func (s *Server) allPackageNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, org := range s.orgs {
		for _, p := range s.packages[org] {
			names = append(names, p.Name)
		}
	}
	return names
}

func (s *Server) search(w http.ResponseWriter, fq, startParam, rowsParam string) {
	org := strings.TrimPrefix(fq, "organization:")
	start, _ := strconv.Atoi(startParam)
	rows := DefaultRows
	if rowsParam != "" {
		rows, _ = strconv.Atoi(rowsParam)
	}

	s.mu.Lock()
	if s.failStart[start] && rows > 0 {
		s.mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if rows > 0 {
		s.starts = append(s.starts, start)
	}
	pkgs := s.packages[org]
	count, ok := s.counts[org]
	if !ok {
		count = len(pkgs)
	}
	s.mu.Unlock()

	var page []ckan.Package
	if start < len(pkgs) {
		page = pkgs[start:min(start+rows, len(pkgs))]
	}
	writeResult(w, ckan.SearchResult{Count: count, Results: page})
}

func (s *Server) showOrganization(w http.ResponseWriter, id string) {
	s.mu.Lock()
	pkgs := s.packages[id]
	count, overridden := s.counts[id]
	known := slices.Contains(s.orgs, id)
	s.mu.Unlock()

	if !known {
		writeError(w, http.StatusNotFound, "Not Found Error", "Not found")
		return
	}
	if !overridden {
		count = len(pkgs)
	}
	writeResult(w, ckan.Organization{ID: id + "-id", Name: id, Title: id, PackageCount: count})
}

func (s *Server) showPackage(w http.ResponseWriter, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, org := range s.orgs {
		for _, p := range s.packages[org] {
			if p.Name == id || p.ID == id {
				writeResult(w, p)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "Not Found Error", "Not found")
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"result":  result,
	})
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   ckan.APIError{Type: kind, Message: message},
	})
}

// Packages generates n packages for org named "<org>-NNN", each with two
// resources created on consecutive days so they sort in a known order.
func Packages(org string, n int) []ckan.Package {
	pkgs := make([]ckan.Package, n)
	for i := range pkgs {
		name := fmt.Sprintf("%s-%03d", org, i)
		pkgs[i] = ckan.Package{
			ID:           name + "-id",
			Name:         name,
			Title:        name,
			NumResources: 2,
			Resources: []ckan.Resource{
				Resource(name+"-r0", name+"-id", `"2023-01-01T09:00:00"`),
				Resource(name+"-r1", name+"-id", `"2023-01-02T09:00:00"`),
			},
		}
	}
	return pkgs
}

// Resource builds a CSV resource with the given raw JSON "created" value.
func Resource(id, packageID, created string) ckan.Resource {
	r := ckan.Resource{
		ID:           ckan.Text(id),
		Name:         ckan.Text(id),
		Description:  ckan.Text("resource " + id),
		Format:       "CSV",
		Mimetype:     "text/csv",
		PackageID:    ckan.Text(packageID),
		ResourceType: "file",
		URL:          ckan.Text("https://example.org/" + id + ".csv"),
	}
	if created != "" {
		r.Created = json.RawMessage(created)
	}
	return r
}
