package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bnema/gstin-gateway/internal/log"
)

type RouterOptions struct {
	AllowedOrigins []string
	ExposeKeyState bool
	// RateLimiter is applied to the verify routes only. Nil disables it.
	RateLimiter *RateLimiter
	// Metrics mounts /metrics and instruments every route when set.
	Metrics Instrumenter
}

type Instrumenter interface {
	Instrument(next http.Handler) http.Handler
	Handler() http.Handler
}

func NewRouter(ctx context.Context, h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(peerAddr)
	r.Use(middleware.RealIP)
	r.Use(log.ChiMiddleware(ctx))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Instrument)
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api/gstin/verify", func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Handler)
		}
		r.Post("/", h.handleVerifyBody)
		r.Get("/{gstin}", h.handleVerifyParam)
	})

	if opts.ExposeKeyState {
		r.Get("/internal/key-state", h.handleKeyState)
	}

	return r
}
