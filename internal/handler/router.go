package handler

import (
	"net/http"
	"time"

	"github.com/lfarias/meubolso/internal/domain"
	"github.com/lfarias/meubolso/internal/infra/observability"
	"github.com/lfarias/meubolso/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(
	ingestSvc *service.IngestService,
	txSvc *service.TransactionsService,
	catSvc *service.CategoriesService,
	analyticsSvc *service.AnalyticsService,
	authSvc *service.AuthService,
	metrics *observability.Metrics,
	uploadMaxBytes int64,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(catSvc, logger))
	r.Get("/readyz", readyzHandler(catSvc, logger))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Statement upload
		r.Post("/statements/upload", uploadStatementHandler(ingestSvc, uploadMaxBytes, logger))

		// Transactions
		r.Get("/transactions", listTransactionsHandler(txSvc, logger))
		r.Get("/transactions/summary", transactionsSummaryHandler(txSvc, logger))
		r.Get("/transactions/{transactionId}", getTransactionHandler(txSvc, logger))
		r.Patch("/transactions/{transactionId}/category", overrideCategoryHandler(txSvc, logger))

		// Categories
		r.Get("/categories", listCategoriesHandler(catSvc, logger))
		r.Post("/categories", createCategoryHandler(catSvc, logger))
		r.Put("/categories/{categoryId}", updateCategoryHandler(catSvc, logger))
		r.Delete("/categories/{categoryId}", deleteCategoryHandler(catSvc, logger))

		// Analytics & export
		r.Get("/analytics/summary", analyticsSummaryHandler(analyticsSvc, logger))
		r.Get("/export/csv", exportCSVHandler(txSvc, logger))

		// Import counters
		r.Get("/metrics/imports", importMetricsHandler(metrics, logger))

		// Auth
		r.Route("/auth", func(r chi.Router) {
			if authSvc == nil {
				r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusServiceUnavailable, "auth service unavailable: Supabase not configured")
				}))
				return
			}
			// Public routes
			r.Post("/register", authRegisterHandler(authSvc, logger))
			r.Post("/login", authLoginHandler(authSvc, logger))
			r.Post("/refresh", authRefreshHandler(authSvc, logger))

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(authSvc, logger))
				r.Post("/logout", authLogoutHandler(authSvc, logger))
				r.Get("/me", authMeHandler(authSvc, logger))
			})
		})
	})

	return r
}

// ============================================================
// Health & operational
// ============================================================

func healthzHandler(catSvc *service.CategoriesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "meubolso-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if catSvc != nil {
			start := time.Now()
			_, err := catSvc.List(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

// readyzHandler answers the readiness probe. Unlike healthz it fails
// hard when the store is unreachable, so an orchestrator stops routing
// traffic here until Supabase recovers.
func readyzHandler(catSvc *service.CategoriesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catSvc != nil {
			if _, err := catSvc.List(r.Context()); err != nil {
				logger.Warn("readiness probe failed", zap.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func importMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetImportSnapshot()
		writeJSON(w, http.StatusOK, snapshot)
	}
}
