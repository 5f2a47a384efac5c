package handler

import (
	"encoding/json"
	"net/http"

	"github.com/lfarias/meubolso/internal/domain"
	"github.com/lfarias/meubolso/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Transactions
// ============================================================

func listTransactionsHandler(txSvc *service.TransactionsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		filter := parseListFilter(r)
		transactions, err := txSvc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if transactions == nil {
			transactions = []domain.Transaction{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
	}
}

func getTransactionHandler(txSvc *service.TransactionsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions/{transactionId}")
		defer span.End()

		id := chi.URLParam(r, "transactionId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "transactionId is required")
			return
		}
		span.SetAttributes(attribute.String("transaction.id", id))

		tx, err := txSvc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func overrideCategoryHandler(txSvc *service.TransactionsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/transactions/{transactionId}/category")
		defer span.End()

		id := chi.URLParam(r, "transactionId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "transactionId is required")
			return
		}

		var req struct {
			CategoryID string `json:"category_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tx, err := txSvc.OverrideCategory(ctx, id, req.CategoryID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func transactionsSummaryHandler(txSvc *service.TransactionsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions/summary")
		defer span.End()

		summary, err := txSvc.Summary(ctx, parseListFilter(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func exportCSVHandler(txSvc *service.TransactionsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/export/csv")
		defer span.End()

		data, err := txSvc.ExportCSV(ctx, parseListFilter(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="transacoes.csv"`)
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
