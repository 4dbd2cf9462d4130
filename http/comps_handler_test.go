package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"cre-underwriter/domain"
	"cre-underwriter/repository"
	"cre-underwriter/service"
)

func newCompsHandler() *CompsHandler {
	svc := service.NewCompsService(
		service.NewStubCompsProvider(""),
		repository.NewMemoryCache(),
		time.Minute,
		0.05,
		zap.NewNop(),
	)
	return NewCompsHandler(svc, zap.NewNop())
}

func TestFetchCompsHandler_OK(t *testing.T) {

	handler := newCompsHandler()

	body := `{
		"address": "100 Congress Ave, Austin, TX",
		"general": {"cam": 5, "taxes": 3},
		"scenarios": {"Base Case": {"rent": 28}}
	}`
	req := httptest.NewRequest(http.MethodPost, "/fetch-comps", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	handler.FetchComps(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp domain.CompsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(resp.Comps) != 3 || resp.Warnings == "" {
		t.Errorf("expected sample comps with a warning, got %+v", resp.CompsReport)
	}
	if len(resp.Comparison) != 3 {
		t.Fatalf("expected 3 comparisons, got %d", len(resp.Comparison))
	}

	statuses := map[string]domain.ComparisonStatus{}
	for _, c := range resp.Comparison {
		statuses[c.Metric] = c.Status
	}
	if statuses["cam"] != domain.ComparisonAligned || statuses["taxes"] != domain.ComparisonOver {
		t.Errorf("unexpected comparison %v", statuses)
	}
}

func TestFetchCompsHandler_MissingAddress(t *testing.T) {

	handler := newCompsHandler()

	req := httptest.NewRequest(http.MethodPost, "/fetch-comps", bytes.NewBufferString(`{"address": "  "}`))
	w := httptest.NewRecorder()

	handler.FetchComps(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {

	handler := HealthHandler(zap.NewNop())

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body healthBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Status != "healthy" {
		t.Errorf("unexpected body %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPost, "/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
