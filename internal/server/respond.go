package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/matzehuels/ckanindex/pkg/dataset"
	"github.com/matzehuels/ckanindex/pkg/errors"
	pkgio "github.com/matzehuels/ckanindex/pkg/io"
)

type errorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// statusFor maps an error code to its HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeOrganizationNotFound, errors.ErrCodePackageNotFound:
		return http.StatusNotFound
	case errors.ErrCodeResultTooLarge:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUpstream, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := errors.As(err)
	if !ok {
		e = errors.Wrap(errors.ErrCodeInternal, err, "internal error")
	}
	status := statusFor(e.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", RequestIDFrom(r.Context()))
	}
	writeJSON(w, status, errorBody{
		Code:        string(e.Code),
		Message:     e.Message,
		Suggestions: e.Suggestions,
	})
}

// unavailable reports an absent upstream result.
func (s *Server) unavailable(w http.ResponseWriter, r *http.Request, what string) {
	s.writeError(w, r, errors.New(errors.ErrCodeUpstream, "%s unavailable from the catalog", what))
}

// indexFormat parses the "format" query parameter (JSON by default). A bad
// value has already been reported when ok is false.
func (s *Server) indexFormat(w http.ResponseWriter, r *http.Request) (pkgio.Format, bool) {
	v := r.URL.Query().Get("format")
	if v == "" {
		return pkgio.FormatJSON, true
	}
	f, err := pkgio.ParseFormat(v)
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "%s", err.Error()))
		return "", false
	}
	return f, true
}

// writeIndex encodes idx in format.
func (s *Server) writeIndex(w http.ResponseWriter, r *http.Request, idx dataset.Index, format pkgio.Format) {
	var buf bytes.Buffer
	if err := pkgio.Write(idx, format, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	switch format {
	case pkgio.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
