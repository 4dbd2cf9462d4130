package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"cre-underwriter/domain"
	"cre-underwriter/service"
)

const uploadField = "file"

type ExtractionHandler struct {
	service        *service.ExtractionService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewExtractionHandler(
	service *service.ExtractionService,
	maxUploadBytes int64,
	logger *zap.Logger,
) *ExtractionHandler {
	return &ExtractionHandler{service: service, maxUploadBytes: maxUploadBytes, logger: logger}
}

// ParseDocument accepts a multipart upload in the "file" field and returns
// the fields extracted from it.
func (h *ExtractionHandler) ParseDocument(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !hasContentType(r, "multipart/form-data") || r.Header.Get("Content-Type") == "" {
		http.Error(w, "content type must be multipart/form-data", http.StatusUnsupportedMediaType)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, r, h.logger, fmt.Errorf("%w: missing %q upload", domain.ErrMalformedRequest, uploadField))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: read upload: %v", domain.ErrMalformedRequest, err))
		return
	}

	result, err := h.service.Extract(r.Context(), header.Filename, data)
	if err != nil {
		h.logger.Info("document rejected",
			zap.String("file", header.Filename),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, h.logger, http.StatusOK, result)
}
