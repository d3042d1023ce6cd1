package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quantifyai/refibot/internal/http/handlers"
	httpmiddleware "github.com/quantifyai/refibot/internal/http/middleware"
	"github.com/quantifyai/refibot/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes
// unregistered.
type Config struct {
	Logger *logging.Logger

	WebhookHandler  *handlers.WebhookHandler
	Calculate       *handlers.CalculateHandler
	AdminProfiles   *handlers.AdminProfilesHandler
	MetricsHandler  http.Handler
	AdminAuthSecret string

	CORSAllowedOrigins []string

	// Requests per second allowed on the public calculate endpoint,
	// per client IP. Zero disables rate limiting.
	CalculateRateLimit float64
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

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

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.WebhookHandler != nil {
			public.Get("/webhook", cfg.WebhookHandler.Verify)
			public.Post("/webhook", cfg.WebhookHandler.Receive)
		}
		if cfg.Calculate != nil {
			if cfg.CalculateRateLimit > 0 {
				burst := int(cfg.CalculateRateLimit*2) + 1
				public.With(httpmiddleware.RateLimit(cfg.CalculateRateLimit, burst)).Post("/calculate", cfg.Calculate.Calculate)
			} else {
				public.Post("/calculate", cfg.Calculate.Calculate)
			}
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminProfiles != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/profiles", cfg.AdminProfiles.ListProfiles)
			admin.Get("/profiles/{chatID}", cfg.AdminProfiles.GetProfile)
			admin.Get("/profiles/{chatID}/transcript", cfg.AdminProfiles.GetTranscript)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
