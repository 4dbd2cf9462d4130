package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"cre-underwriter/domain"
)

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// writeJSON encodes into a buffer first so an encoding failure can still
// produce a clean 500.
func writeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error("failed to encode response",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, r, logger, status, errorBody{
		Error:     err.Error(),
		RequestID: RequestIDFrom(r.Context()),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedRequest), errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedDocument):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrInsufficientText), errors.Is(err, domain.ErrDegenerateInput):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// hasContentType reports whether the request declares mediaType. A request
// without a Content-Type header is accepted.
func hasContentType(r *http.Request, mediaType string) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == mediaType
}

// decodeJSON enforces method and content type and decodes the body into v.
// It writes the error response itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if !hasContentType(r, "application/json") {
		http.Error(w, "content type must be application/json", http.StatusUnsupportedMediaType)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Debug("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, r, logger, http.StatusBadRequest, errorBody{
			Error:     "invalid request body",
			RequestID: RequestIDFrom(r.Context()),
		})
		return false
	}
	return true
}
