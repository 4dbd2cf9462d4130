package http

import (
	"net/http"

	"go.uber.org/zap"

	"cre-underwriter/domain"
	"cre-underwriter/service"
)

type CompsHandler struct {
	service *service.CompsService
	logger  *zap.Logger
}

func NewCompsHandler(service *service.CompsService, logger *zap.Logger) *CompsHandler {
	return &CompsHandler{service: service, logger: logger}
}

func (h *CompsHandler) FetchComps(w http.ResponseWriter, r *http.Request) {

	var input domain.CompsRequest
	if !decodeJSON(w, r, h.logger, &input) {
		return
	}

	result, err := h.service.Lookup(r.Context(), input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, h.logger, http.StatusOK, result)
}
