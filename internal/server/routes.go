package server

import (
	"context"
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/picoyplaca/picoyplaca/internal/appid"
	"github.com/picoyplaca/picoyplaca/internal/observability"
	"github.com/picoyplaca/picoyplaca/internal/server/handlers"
)

func (s *Server) registerRoutes() {
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/check", s.evaluation.Check)
		r.Post("/check/batch", s.evaluation.CheckBatch)
		r.Get("/schedule", s.evaluation.Schedule)
	})

	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", MetricsHandler)

	s.registerAdminEndpoint()
}

// registerAdminEndpoint mounts POST /admin/signal when <PREFIX>ADMIN_TOKEN
// is set. Requests need the token as a bearer credential.
func (s *Server) registerAdminEndpoint() {
	identity, _ := appid.Get(context.Background())
	tokenVar := appid.EnvPrefix(identity) + "ADMIN_TOKEN"
	logger := observability.ServerLogger

	adminToken := os.Getenv(tokenVar)
	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled", zap.String("env", tokenVar))
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,
		RateBurst: 5,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled; do not expose this server publicly")
	}
}
