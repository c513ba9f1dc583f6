package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Cheertaboi/tips-console/internal/api/handlers"
	"github.com/Cheertaboi/tips-console/internal/api/middleware"
	"github.com/Cheertaboi/tips-console/internal/export"
	"github.com/Cheertaboi/tips-console/internal/models"
	"github.com/Cheertaboi/tips-console/internal/service"
	"github.com/Cheertaboi/tips-console/internal/validation"
)

// Deps are the services the router exposes.
type Deps struct {
	Logger *slog.Logger

	Tips          *service.Lister[models.Tip]
	Packages      *service.Lister[models.Package]
	Accounts      *service.Lister[models.Account]
	Transactions  *service.Lister[models.Transaction]
	Tickets       *service.Lister[models.Ticket]
	Notifications *service.Lister[models.Notification]

	Quota    *service.QuotaManager
	Composer *service.Composer

	Validator *validation.Validator
	// Limiter guards mutating routes. Nil disables rate limiting.
	Limiter middleware.Limiter

	CORSOrigins     []string
	RequestTimeout  time.Duration
	DefaultPageSize int
}

// NewRouter builds the HTTP router for the console API.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mutating := func(h http.HandlerFunc) http.Handler {
		if d.Limiter == nil {
			return h
		}
		return middleware.RateLimit(d.Limiter, 1)(h)
	}

	quota := handlers.NewQuotaHandler(d.Quota, d.Logger)
	sessions := handlers.NewSessionHandler(d.Composer, d.Validator, d.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(d.RequestTimeout))

		r.Route("/tips", func(r chi.Router) {
			r.Get("/quota", quota.Usage)
			r.Method(http.MethodPut, "/{id}/free", mutating(quota.Publish))
			r.Method(http.MethodDelete, "/{id}/free", mutating(quota.Unpublish))
			handlers.NewListHandler(d.Tips, export.Tips, d.DefaultPageSize, d.Logger).Mount(r)
		})

		r.Route("/packages", func(r chi.Router) {
			r.Method(http.MethodPost, "/{id}/sessions", mutating(sessions.Open))
			handlers.NewListHandler(d.Packages, export.Packages, d.DefaultPageSize, d.Logger).Mount(r)
		})

		r.Route("/accounts", handlers.NewListHandler(d.Accounts, export.Accounts, d.DefaultPageSize, d.Logger).Mount)
		r.Route("/transactions", handlers.NewListHandler(d.Transactions, export.Transactions, d.DefaultPageSize, d.Logger).Mount)
		r.Route("/tickets", handlers.NewListHandler(d.Tickets, export.Tickets, d.DefaultPageSize, d.Logger).Mount)
		r.Route("/notifications", handlers.NewListHandler(d.Notifications, export.Notifications, d.DefaultPageSize, d.Logger).Mount)

		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Method(http.MethodDelete, "/", mutating(sessions.Cancel))
			r.Method(http.MethodPost, "/save", mutating(sessions.Save))
			r.Method(http.MethodPost, "/tips", mutating(sessions.AddTips))
			r.Method(http.MethodDelete, "/tips/{index}", mutating(sessions.RemoveTip))
			r.Method(http.MethodPatch, "/tips/{index}", mutating(sessions.EditField))
			r.Method(http.MethodPost, "/tips/{index}/move", mutating(sessions.MoveTip))
			r.Method(http.MethodPost, "/tips/{index}/duplicate", mutating(sessions.DuplicateTip))
		})
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
