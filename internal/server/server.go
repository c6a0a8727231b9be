package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/picoyplaca/picoyplaca/internal/config"
	"github.com/picoyplaca/picoyplaca/internal/core/restriction"
	apperrors "github.com/picoyplaca/picoyplaca/internal/errors"
	"github.com/picoyplaca/picoyplaca/internal/observability"
	"github.com/picoyplaca/picoyplaca/internal/server/handlers"
	servermw "github.com/picoyplaca/picoyplaca/internal/server/middleware"
)

// Server is the picoyplaca HTTP service.
type Server struct {
	router     *chi.Mux
	server     *http.Server
	cfg        config.ServerConfig
	evaluation *handlers.EvaluationHandlers
}

// New builds the router for cfg, serving checks against schedule.
func New(cfg config.ServerConfig, schedule restriction.Schedule) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	// RequestID first so every later layer can correlate; Recovery last so
	// it sits closest to the handlers and metrics still see the 500.
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router:     r,
		cfg:        cfg,
		evaluation: handlers.NewEvaluationHandlers(schedule, cfg.MaxBatchSize),
		server: &http.Server{
			Handler:           r,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}

	handlers.SetHTTPErrorResponder(HandleError)
	s.registerRoutes()

	return s
}

// Start listens on the configured address and serves until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("host", s.cfg.Host),
			zap.Int("port", s.cfg.Port),
			zap.String("addr", ln.Addr().String()))
	}

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Evaluation returns the evaluation handlers, which double as the schedule
// health checker.
func (s *Server) Evaluation() *handlers.EvaluationHandlers {
	return s.evaluation
}
