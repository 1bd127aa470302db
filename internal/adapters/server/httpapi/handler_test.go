package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hylla/tabula/internal/adapters/server/common"
)

// stubSheetService provides deterministic sheet-store responses for REST tests.
type stubSheetService struct {
	summaries []common.SheetSummary
	csvByName map[string]string
	revisions []common.RevisionSummary
	saveErr   error
	lastSave  struct {
		name    string
		csvText string
	}
}

func (s *stubSheetService) ListSheets(context.Context) ([]common.SheetSummary, error) {
	return append([]common.SheetSummary(nil), s.summaries...), nil
}

func (s *stubSheetService) SheetCSV(_ context.Context, name string) (string, error) {
	csvText, ok := s.csvByName[name]
	if !ok {
		return "", common.ErrSheetNotFound
	}
	return csvText, nil
}

func (s *stubSheetService) SaveSheetCSV(_ context.Context, name, csvText string) error {
	s.lastSave.name = name
	s.lastSave.csvText = csvText
	return s.saveErr
}

func (s *stubSheetService) SheetRevisions(_ context.Context, name string) ([]common.RevisionSummary, error) {
	if _, ok := s.csvByName[name]; !ok {
		return nil, common.ErrSheetNotFound
	}
	return append([]common.RevisionSummary(nil), s.revisions...), nil
}

func (s *stubSheetService) RevisionCSV(_ context.Context, revisionID string) (string, error) {
	csvText, ok := s.csvByName[revisionID]
	if !ok {
		return "", common.ErrRevisionNotFound
	}
	return csvText, nil
}

// newStubService builds one stub with a stored towns sheet.
func newStubService() *stubSheetService {
	return &stubSheetService{
		summaries: []common.SheetSummary{
			{Name: "towns", Rows: 2, Cols: 2},
		},
		csvByName: map[string]string{
			"towns": "name,population\nAlvesta,8017\nVislanda,1756\n",
			"rev-1": "name,population\nAlvesta,8000\n",
		},
		revisions: []common.RevisionSummary{
			{ID: "rev-1", CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		},
	}
}

// doRequest runs one request against the handler and returns the recorded response.
func doRequest(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestHandlerListSheets verifies behavior for the covered scenario.
func TestHandlerListSheets(t *testing.T) {
	h := NewHandler(newStubService())
	rec := doRequest(t, h, http.MethodGet, "/sheets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var payload struct {
		Sheets []common.SheetSummary `json:"sheets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(payload.Sheets) != 1 || payload.Sheets[0].Name != "towns" || payload.Sheets[0].Rows != 2 {
		t.Fatalf("unexpected sheet listing: %+v", payload.Sheets)
	}
}

// TestHandlerGetSheetCSV verifies behavior for the covered scenario.
func TestHandlerGetSheetCSV(t *testing.T) {
	h := NewHandler(newStubService())
	rec := doRequest(t, h, http.MethodGet, "/sheets/towns/csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("Content-Type = %q, want text/csv", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "name,population\n") {
		t.Fatalf("expected header-first csv, got %q", rec.Body.String())
	}
}

// TestHandlerPutSheetCSV verifies behavior for the covered scenario.
func TestHandlerPutSheetCSV(t *testing.T) {
	svc := newStubService()
	h := NewHandler(svc)
	uploaded := "name,population\nMoheda,2012\n"
	rec := doRequest(t, h, http.MethodPut, "/sheets/towns/csv", uploaded)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if svc.lastSave.name != "towns" || svc.lastSave.csvText != uploaded {
		t.Fatalf("save request = %+v, want towns with uploaded csv", svc.lastSave)
	}
}

// TestHandlerPutSheetCSVRejectsInvalidDocument verifies behavior for the covered scenario.
func TestHandlerPutSheetCSVRejectsInvalidDocument(t *testing.T) {
	svc := newStubService()
	svc.saveErr = common.ErrInvalidDocument
	h := NewHandler(svc)
	rec := doRequest(t, h, http.MethodPut, "/sheets/towns/csv", "\"broken")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var envelope ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if envelope.Error.Code != "invalid_document" {
		t.Fatalf("error code = %q, want invalid_document", envelope.Error.Code)
	}
}

// TestHandlerListRevisions verifies behavior for the covered scenario.
func TestHandlerListRevisions(t *testing.T) {
	h := NewHandler(newStubService())
	rec := doRequest(t, h, http.MethodGet, "/sheets/towns/revisions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var payload struct {
		Revisions []common.RevisionSummary `json:"revisions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(payload.Revisions) != 1 || payload.Revisions[0].ID != "rev-1" {
		t.Fatalf("unexpected revisions: %+v", payload.Revisions)
	}
}

// TestHandlerGetRevisionCSV verifies behavior for the covered scenario.
func TestHandlerGetRevisionCSV(t *testing.T) {
	h := NewHandler(newStubService())
	rec := doRequest(t, h, http.MethodGet, "/revisions/rev-1/csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Alvesta,8000") {
		t.Fatalf("unexpected revision csv: %q", rec.Body.String())
	}
}

// TestHandlerUnknownSheetIs404 verifies behavior for the covered scenario.
func TestHandlerUnknownSheetIs404(t *testing.T) {
	h := NewHandler(newStubService())
	rec := doRequest(t, h, http.MethodGet, "/sheets/missing/csv", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestHandlerUnknownEndpointIs404 verifies behavior for the covered scenario.
func TestHandlerUnknownEndpointIs404(t *testing.T) {
	h := NewHandler(newStubService())
	rec := doRequest(t, h, http.MethodGet, "/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestHandlerMethodNotAllowed verifies behavior for the covered scenario.
func TestHandlerMethodNotAllowed(t *testing.T) {
	h := NewHandler(newStubService())
	rec := doRequest(t, h, http.MethodDelete, "/sheets/towns/csv", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPut) {
		t.Fatalf("Allow = %q, want PUT listed", allow)
	}
}
