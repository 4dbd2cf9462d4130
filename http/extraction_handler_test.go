package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"cre-underwriter/domain"
	"cre-underwriter/service"
)

const leaseComp = `CoStar Lease Comparable
Tenant: Northwind Traders
Asking Rent: $29.00/sf/yr
CAM: $5.75/sf
Taxes: $2.40 psf
Building size: 22,000 sqft`

func newExtractionHandler(limit int64) *ExtractionHandler {
	return NewExtractionHandler(service.NewExtractionService(nil, zap.NewNop()), limit, zap.NewNop())
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func TestParseDocumentHandler_OK(t *testing.T) {

	handler := newExtractionHandler(1 << 20)

	body, ct := multipartUpload(t, "file", "comp.txt", leaseComp)
	req := httptest.NewRequest(http.MethodPost, "/parse-pdf", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()

	handler.ParseDocument(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result domain.ExtractionResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if result.DocumentType != domain.DocumentCoStar {
		t.Errorf("expected costar, got %s", result.DocumentType)
	}
	if result.Fields.RentPerSqft == nil || *result.Fields.RentPerSqft != 29 {
		t.Errorf("expected rent 29, got %v", result.Fields.RentPerSqft)
	}
	if result.Fields.SquareFeet == nil || *result.Fields.SquareFeet != 22000 {
		t.Errorf("expected 22000 sqft, got %v", result.Fields.SquareFeet)
	}
}

func TestParseDocumentHandler_Errors(t *testing.T) {

	tests := []struct {
		name     string
		field    string
		filename string
		content  string
		want     int
	}{
		{"too little text", "file", "short.txt", "Rent $20/sf", http.StatusUnprocessableEntity},
		{"unsupported extension", "file", "memo.docx", leaseComp, http.StatusUnsupportedMediaType},
		{"missing file field", "upload", "comp.txt", leaseComp, http.StatusBadRequest},
	}

	handler := newExtractionHandler(1 << 20)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartUpload(t, tt.field, tt.filename, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/parse-pdf", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()

			handler.ParseDocument(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestParseDocumentHandler_RequiresMultipart(t *testing.T) {

	handler := newExtractionHandler(1 << 20)

	for _, ct := range []string{"", "application/json"} {
		req := httptest.NewRequest(http.MethodPost, "/parse-pdf", strings.NewReader(leaseComp))
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		w := httptest.NewRecorder()

		handler.ParseDocument(w, req)

		if w.Code != http.StatusUnsupportedMediaType {
			t.Errorf("content type %q: expected 415, got %d", ct, w.Code)
		}
	}
}

func TestParseDocumentHandler_TooLarge(t *testing.T) {

	handler := newExtractionHandler(512)

	body, ct := multipartUpload(t, "file", "comp.txt", strings.Repeat(leaseComp, 10))
	req := httptest.NewRequest(http.MethodPost, "/parse-pdf", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()

	handler.ParseDocument(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestParseDocumentHandler_MethodNotAllowed(t *testing.T) {

	handler := newExtractionHandler(1 << 20)

	w := httptest.NewRecorder()
	handler.ParseDocument(w, httptest.NewRequest(http.MethodGet, "/parse-pdf", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
