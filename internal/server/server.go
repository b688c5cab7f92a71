// internal/server/server.go
//
// Admin HTTP surface of the charm agent.
//
// Context
// -------
// The agent exposes a small endpoint for the website relation and for
// scraping: /healthz reports the currently loaded configuration
// generation, and /metrics serves the Prometheus registry.  This is the
// agent's own port, not Grafana's.
//
// Production hardening keeps the usual timeouts:
//
//   • ReadTimeout   – abort slow-loris headers (10 s)
//   • WriteTimeout  – cap total response time (15 s)
//   • IdleTimeout   – close keep-alives on idle clients (60 s)
//

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charmkit/grafana/internal/config"
)

// Router builds the admin mux.
func Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		type health struct {
			Status  string `json:"status"`
			AppMode string `json:"app_mode,omitempty"`
			Port    uint16 `json:"grafana_port,omitempty"`
		}

		w.Header().Set("Content-Type", "application/json")

		h := health{Status: "ok"}
		if cfg := config.Get(); cfg != nil {
			h.AppMode = cfg.AppMode
			h.Port = cfg.Port
		} else {
			h.Status = "no config loaded"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(h)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// New constructs an *http.Server with sensible defaults.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
