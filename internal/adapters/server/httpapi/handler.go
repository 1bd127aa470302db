// Package httpapi provides the REST HTTP adapter for the daemon's admin surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hylla/tabula/internal/adapters/server/common"
)

// maxRequestBodyBytes limits uploaded CSV payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 16 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	sheets common.SheetService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the sheet service.
func NewHandler(sheets common.SheetService) *Handler {
	return &Handler{sheets: sheets}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	segments := splitPath(r.URL.Path)
	switch {
	case len(segments) == 1 && segments[0] == "sheets":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListSheets(w, r)
	case len(segments) == 3 && segments[0] == "sheets" && segments[2] == "csv":
		switch r.Method {
		case http.MethodGet:
			h.handleGetSheetCSV(w, r, segments[1])
		case http.MethodPut:
			h.handlePutSheetCSV(w, r, segments[1])
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPut)
		}
	case len(segments) == 3 && segments[0] == "sheets" && segments[2] == "revisions":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListRevisions(w, r, segments[1])
	case len(segments) == 3 && segments[0] == "revisions" && segments[2] == "csv":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleGetRevisionCSV(w, r, segments[1])
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// handleListSheets serves GET /sheets.
func (h *Handler) handleListSheets(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.sheets.ListSheets(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sheets": summaries})
}

// handleGetSheetCSV serves GET /sheets/{name}/csv.
func (h *Handler) handleGetSheetCSV(w http.ResponseWriter, r *http.Request, name string) {
	csvText, err := h.sheets.SheetCSV(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeCSV(w, csvText)
}

// handlePutSheetCSV serves PUT /sheets/{name}/csv.
func (h *Handler) handlePutSheetCSV(w http.ResponseWriter, r *http.Request, name string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes+1))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: fmt.Sprintf("read request body: %v", err),
		})
		return
	}
	if int64(len(body)) > maxRequestBodyBytes {
		writeJSONError(w, http.StatusRequestEntityTooLarge, APIError{
			Code:    "payload_too_large",
			Message: "csv document exceeds upload limit",
		})
		return
	}
	if err := h.sheets.SaveSheetCSV(r.Context(), name, string(body)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": name})
}

// handleListRevisions serves GET /sheets/{name}/revisions.
func (h *Handler) handleListRevisions(w http.ResponseWriter, r *http.Request, name string) {
	revisions, err := h.sheets.SheetRevisions(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revisions": revisions})
}

// handleGetRevisionCSV serves GET /revisions/{id}/csv.
func (h *Handler) handleGetRevisionCSV(w http.ResponseWriter, r *http.Request, revisionID string) {
	csvText, err := h.sheets.RevisionCSV(r.Context(), revisionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeCSV(w, csvText)
}

// splitPath normalizes one request path into its non-empty segments.
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// writeServiceError maps service sentinels onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrSheetNotFound), errors.Is(err, common.ErrRevisionNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidDocument):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_document",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed responds with the allowed method set.
func writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, status int, apiErr APIError) {
	writeJSON(w, status, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeCSV writes one CSV document response.
func writeCSV(w http.ResponseWriter, csvText string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, csvText)
}
