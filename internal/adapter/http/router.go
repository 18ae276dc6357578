package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/gobudget/internal/adapter/http/handler"
	"github.com/iho/gobudget/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	CategoryHandler    *handler.CategoryHandler
	TransactionHandler *handler.TransactionHandler
	PlanningHandler    *handler.PlanningHandler
	BudgetHandler      *handler.BudgetHandler
	BalanceHandler     *handler.BalanceHandler
	SnapshotHandler    *handler.SnapshotHandler
	HealthHandler      *handler.HealthHandler
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Put("/{id}", cfg.AccountHandler.Update)
			r.Delete("/{id}", cfg.AccountHandler.Delete)
			r.Post("/{id}/close", cfg.AccountHandler.Close)
			r.Get("/{id}/transactions", cfg.TransactionHandler.ListByAccount)
			r.Post("/{id}/reconcile", cfg.TransactionHandler.Reconcile)
			r.Get("/{id}/balance", cfg.BalanceHandler.AccountBalance)
			r.Get("/{id}/balance/running", cfg.BalanceHandler.AccountRunningBalances)
		})

		// Categories
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", cfg.CategoryHandler.Create)
			r.Get("/", cfg.CategoryHandler.List)
			r.Get("/{id}", cfg.CategoryHandler.Get)
			r.Put("/{id}", cfg.CategoryHandler.Update)
			r.Delete("/{id}", cfg.CategoryHandler.Delete)
			r.Post("/{id}/archive", cfg.CategoryHandler.Archive)
			r.Get("/{id}/balance", cfg.BalanceHandler.CategoryBalance)
			r.Get("/{id}/balance/running", cfg.BalanceHandler.CategoryRunningBalances)
			r.Get("/{id}/budget/{month}", cfg.BudgetHandler.CategoryData)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Put("/{id}", cfg.TransactionHandler.Update)
			r.Delete("/{id}", cfg.TransactionHandler.Delete)
			r.Post("/bulk-delete", cfg.TransactionHandler.BulkDelete)
			r.Post("/import", cfg.TransactionHandler.Import)
			r.Post("/transfers/account", cfg.TransactionHandler.CreateAccountTransfer)
			r.Post("/transfers/category", cfg.TransactionHandler.CreateCategoryTransfer)
		})

		// Planning
		r.Route("/planning", func(r chi.Router) {
			r.Post("/", cfg.PlanningHandler.Create)
			r.Get("/", cfg.PlanningHandler.List)
			r.Get("/{id}", cfg.PlanningHandler.Get)
			r.Put("/{id}", cfg.PlanningHandler.Update)
			r.Delete("/{id}", cfg.PlanningHandler.Delete)
			r.Post("/{id}/execute", cfg.PlanningHandler.Execute)
			r.Get("/{id}/occurrences", cfg.PlanningHandler.Occurrences)
		})

		// Budget
		r.Route("/budget", func(r chi.Router) {
			r.Get("/{month}/summary", cfg.BudgetHandler.Summary)
			r.Post("/{month}/reset", cfg.BudgetHandler.Reset)
			r.Post("/{month}/apply-template", cfg.BudgetHandler.ApplyTemplate)
		})

		// Snapshots
		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", cfg.SnapshotHandler.List)
			r.Get("/{month}", cfg.SnapshotHandler.Get)
			r.Post("/{month}/recalculate", cfg.SnapshotHandler.Recalculate)
		})
	})

	return r
}
