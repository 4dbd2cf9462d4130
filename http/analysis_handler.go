package http

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"cre-underwriter/domain"
	"cre-underwriter/report"
	"cre-underwriter/service"
)

type AnalysisHandler struct {
	service *service.AnalysisService
	logger  *zap.Logger
}

func NewAnalysisHandler(service *service.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: service, logger: logger}
}

// CalculateMetrics evaluates every scenario in the body against the general
// deal parameters.
func (h *AnalysisHandler) CalculateMetrics(w http.ResponseWriter, r *http.Request) {

	var input domain.AnalysisInput
	if !decodeJSON(w, r, h.logger, &input) {
		return
	}

	req, err := input.Resolve()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.service.Calculate(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, h.logger, http.StatusOK, result)
}

// Sensitivity sweeps rent for the single `scenario` in the body, or for every
// entry of `scenarios` when no single scenario is given.
func (h *AnalysisHandler) Sensitivity(w http.ResponseWriter, r *http.Request) {

	var input domain.AnalysisInput
	if !decodeJSON(w, r, h.logger, &input) {
		return
	}

	if input.Scenario != nil {
		if input.General == nil {
			writeError(w, r, h.logger,
				fmt.Errorf("%w: general parameters are required", domain.ErrMalformedRequest))
			return
		}
		points, err := h.service.Sensitivity(input.General.Resolve(), input.Scenario.Resolve(), input.Perturbations)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, r, h.logger, http.StatusOK, domain.SensitivityResponse{Points: points})
		return
	}

	req, err := input.Resolve()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	result, err := h.service.SensitivityAll(req, input.Perturbations)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, h.logger, http.StatusOK, result)
}

// Report runs the analysis and the rent sweep and returns the rendered
// report. ?format=markdown returns the Markdown source instead of HTML.
func (h *AnalysisHandler) Report(w http.ResponseWriter, r *http.Request) {

	var input domain.AnalysisInput
	if !decodeJSON(w, r, h.logger, &input) {
		return
	}

	req, err := input.Resolve()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	analysis, err := h.service.Calculate(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sweeps, err := h.service.SensitivityAll(req, input.Perturbations)
	if err != nil {
		// El reporte sigue siendo útil sin la tabla de sensibilidad
		h.logger.Warn("sensitivity omitted from report",
			zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
	}

	in := report.NewInput(req, analysis, sweeps)
	in.Title = strings.TrimSpace(r.URL.Query().Get("title"))
	md := report.Markdown(in)

	if strings.EqualFold(r.URL.Query().Get("format"), "markdown") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(md))
		return
	}

	page, err := report.RenderHTML(in.Title, md)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}
