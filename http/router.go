package http

import (
	"net/http"

	"go.uber.org/zap"
)

type Handlers struct {
	Analysis   *AnalysisHandler
	Extraction *ExtractionHandler
	Comps      *CompsHandler
}

// NewRouter mounts every endpoint. Work endpoints share the rate limiter;
// /health is never limited.
func NewRouter(h Handlers, limiter *RateLimiter, logger *zap.Logger) http.Handler {
	limited := func(fn http.HandlerFunc) http.Handler {
		return RateLimitMiddleware(limiter, fn)
	}

	mux := http.NewServeMux()
	mux.Handle("/calculate-metrics", limited(h.Analysis.CalculateMetrics))
	mux.Handle("/sensitivity", limited(h.Analysis.Sensitivity))
	mux.Handle("/report", limited(h.Analysis.Report))
	mux.Handle("/parse-pdf", limited(h.Extraction.ParseDocument))
	mux.Handle("/fetch-comps", limited(h.Comps.FetchComps))
	mux.Handle("/health", HealthHandler(logger))

	return RequestIDMiddleware(logger, mux)
}
