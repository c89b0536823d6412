package api

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lead-intake/internal/common/observability"
)

type RouterOptions struct {
	// Limiter, when set, guards the two routes that write submissions.
	Limiter        Limiter
	Observability  *observability.Observability
	AllowedOrigins []string
	// TrustedProxies are the peers whose forwarding headers name the client.
	TrustedProxies []netip.Prefix
	// MetricsHandler defaults to promhttp.Handler().
	MetricsHandler http.Handler
}

// SetupRoutes builds the HTTP surface of the intake service.
func SetupRoutes(h *Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(realIP(opts.TrustedProxies))
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if opts.Observability != nil {
		r.Use(opts.Observability.Middleware(routePattern))
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	limited := func(route string) func(http.Handler) http.Handler {
		if opts.Limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return rateLimit(opts.Limiter, route, h.errors)
	}

	r.Get("/health", h.Health)

	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/api", func(r chi.Router) {
		r.With(limited("submit-form")).Post("/submit-form", h.SubmitForm)

		r.Route("/wizard", func(r chi.Router) {
			r.Get("/forms", h.Forms)
			r.Post("/sessions", h.StartSession)
			r.Get("/sessions/{id}", h.GetSession)
			r.With(limited("wizard-step")).Post("/sessions/{id}/steps/{step}", h.SubmitStep)
		})
	})

	return r
}
