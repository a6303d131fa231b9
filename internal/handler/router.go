package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerly/ledgerly/internal/middleware"
)

// RouterConfig carries the handlers and settings needed to build the router.
type RouterConfig struct {
	Base     *Handler
	Health   *HealthHandler
	Users    *UserHandler
	Accounts *AccountHandler

	CORSAllowedOrigins []string
	Logger             *slog.Logger
}

// NewRouter configures the chi router with all routes and middleware.
// StripSlashes lets both /users and /users/ reach the collection handlers.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))

	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)

	// Root info endpoint
	r.Get("/", cfg.Base.Hello)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", cfg.Users.Create)
		r.Get("/", cfg.Users.List)
		r.Delete("/", cfg.Users.DeleteAll)
		r.Get("/{id}", cfg.Users.Get)
		r.Put("/{id}", cfg.Users.Update)
		r.Delete("/{id}", cfg.Users.Delete)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", cfg.Accounts.Create)
		r.Get("/", cfg.Accounts.List)
		r.Delete("/", cfg.Accounts.DeleteAll)
		r.Get("/{id}", cfg.Accounts.Get)
		r.Put("/{id}", cfg.Accounts.Update)
		r.Delete("/{id}", cfg.Accounts.Delete)
	})

	// 404 and 405 handlers
	r.NotFound(cfg.Base.NotFound)
	r.MethodNotAllowed(cfg.Base.MethodNotAllowed)

	return r
}
