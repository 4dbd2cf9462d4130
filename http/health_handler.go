package http

import (
	"net/http"

	"go.uber.org/zap"
)

type healthBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func HealthHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, r, logger, http.StatusOK, healthBody{
			Status:  "healthy",
			Message: "CRE API is running",
		})
	}
}
