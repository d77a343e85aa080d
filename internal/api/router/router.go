package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/quicklaunchweb/leadrelay/internal/http/handlers"
	httpmiddleware "github.com/quicklaunchweb/leadrelay/internal/http/middleware"
	"github.com/quicklaunchweb/leadrelay/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	// LeadHandlers maps site keys to their intake handlers.
	LeadHandlers map[string]*handlers.LeadHandler
	// DefaultSite serves the bare /api/lead route.
	DefaultSite string

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimitRPS of 0 disables rate limiting on the lead routes.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(lead chi.Router) {
		if cfg.RateLimitRPS > 0 {
			lead.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		if h, ok := cfg.LeadHandlers[cfg.DefaultSite]; ok {
			lead.Post("/api/lead", h.Submit)
		}
		lead.Post("/api/lead/{site}", func(w http.ResponseWriter, r *http.Request) {
			key := chi.URLParam(r, "site")
			h, ok := cfg.LeadHandlers[key]
			if !ok {
				http.Error(w, "unknown site", http.StatusNotFound)
				return
			}
			h.Submit(w, r)
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
