package handler

import (
	"net/http"
	"strconv"

	"github.com/lfarias/meubolso/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Analytics
// ============================================================

func analyticsSummaryHandler(analyticsSvc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/summary")
		defer span.End()

		months := 0
		if v := r.URL.Query().Get("months"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 36 {
				writeError(w, http.StatusBadRequest, "months must be between 1 and 36")
				return
			}
			months = n
		}

		summary, err := analyticsSvc.GetSummary(ctx, months)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
