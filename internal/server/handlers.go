package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/ckanindex/pkg/buildinfo"
	"github.com/matzehuels/ckanindex/pkg/errors"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// =============================================================================
// Organizations
// =============================================================================

func (s *Server) listOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, ok := s.catalog.Organizations(r.Context())
	if !ok {
		s.unavailable(w, r, "organization list")
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}

func (s *Server) searchOrganizations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if err := errors.ValidateIdentifier("query", q); err != nil {
		s.writeError(w, r, err)
		return
	}
	matches, err := s.catalog.SearchOrganizations(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// organization validates and resolves the {name} path parameter. It writes
// the error response and returns false on failure.
func (s *Server) organization(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateIdentifier("organization", name); err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	name, err := s.catalog.ResolveOrganization(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	return name, true
}

func (s *Server) showOrganization(w http.ResponseWriter, r *http.Request) {
	name, ok := s.organization(w, r)
	if !ok {
		return
	}
	datasets, _ := strconv.ParseBool(r.URL.Query().Get("datasets"))
	info, ok, err := s.catalog.OrganizationInfo(r.Context(), name, datasets)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.unavailable(w, r, "organization details")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) organizationPackages(w http.ResponseWriter, r *http.Request) {
	name, ok := s.organization(w, r)
	if !ok {
		return
	}
	res, ok, err := s.catalog.FilterByOrganization(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.unavailable(w, r, "package search")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) organizationIndex(w http.ResponseWriter, r *http.Request) {
	format, ok := s.indexFormat(w, r)
	if !ok {
		return
	}
	mode := r.URL.Query().Get("mode")
	if mode != "" && mode != "bounded" && mode != "full" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput,
			"unknown mode %q (want bounded or full)", mode))
		return
	}
	name, ok := s.organization(w, r)
	if !ok {
		return
	}

	switch mode {
	case "", "bounded":
		b, err := s.catalog.AggregateBounded(r.Context(), name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		switch {
		case b.TooLarge:
			s.writeError(w, r, errors.New(errors.ErrCodeResultTooLarge,
				"%s has %d packages; use mode=full", name, b.Count))
		case b.OK():
			s.writeIndex(w, r, b.Index, format)
		case b.Count == 0:
			s.writeIndex(w, r, nil, format)
		default:
			s.unavailable(w, r, "package search")
		}

	case "full":
		idx, stats, err := s.catalog.Crawl(r.Context(), name, s.crawl)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("X-Crawl-ID", stats.ID)
		w.Header().Set("X-Crawl-Failed-Pages", strconv.Itoa(len(stats.FailedPages)))
		w.Header().Set("X-Crawl-Duration", stats.Duration.Round(time.Millisecond).String())
		s.writeIndex(w, r, idx, format)
	}
}

// =============================================================================
// Packages
// =============================================================================

func (s *Server) listPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, ok := s.catalog.Packages(r.Context())
	if !ok {
		s.unavailable(w, r, "package list")
		return
	}
	writeJSON(w, http.StatusOK, pkgs)
}

func (s *Server) searchPackages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if err := errors.ValidateIdentifier("query", q); err != nil {
		s.writeError(w, r, err)
		return
	}
	matches, err := s.catalog.SearchPackages(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) pkg(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateIdentifier("package", id); err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	id, err := s.catalog.ResolvePackage(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	return id, true
}

func (s *Server) showPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pkg(w, r)
	if !ok {
		return
	}
	p, ok, err := s.catalog.PackageInfo(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.unavailable(w, r, "package details")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) packageResources(w http.ResponseWriter, r *http.Request) {
	format, ok := s.indexFormat(w, r)
	if !ok {
		return
	}
	id, ok := s.pkg(w, r)
	if !ok {
		return
	}
	idx, ok, err := s.catalog.PackageResources(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.unavailable(w, r, "package details")
		return
	}
	s.writeIndex(w, r, idx, format)
}
