// Package http assembles the public router: component handlers behind
// the shared middleware stack, plus health and metrics endpoints.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agora/internal/platform/middleware"
	"agora/pkg/platform/httputil"
)

// Registerer is implemented by every component handler.
type Registerer interface {
	Register(r chi.Router)
}

type Config struct {
	Validator  middleware.TokenValidator
	Logger     *slog.Logger
	Metrics    prometheus.Gatherer
	Components []Registerer
}

// New builds the router. Reads and writes alike require a caller
// principal; only health and metrics are open.
func New(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePrincipal(cfg.Validator, cfg.Logger))
		for _, c := range cfg.Components {
			c.Register(r)
		}
	})
	return r
}
