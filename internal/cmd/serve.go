package cmd

import (
	"context"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/picoyplaca/picoyplaca/internal/appid"
	"github.com/picoyplaca/picoyplaca/internal/config"
	"github.com/picoyplaca/picoyplaca/internal/core/restriction"
	errwrap "github.com/picoyplaca/picoyplaca/internal/errors"
	"github.com/picoyplaca/picoyplaca/internal/metrics"
	"github.com/picoyplaca/picoyplaca/internal/observability"
	"github.com/picoyplaca/picoyplaca/internal/server"
	"github.com/picoyplaca/picoyplaca/internal/server/handlers"
)

// telemetryHealthChecker fails until the telemetry system and exporter exist.
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// identityHealthChecker validates app identity metadata.
type identityHealthChecker struct {
	binaryName string
	envPrefix  string
	configName string
}

func (i identityHealthChecker) CheckHealth(ctx context.Context) error {
	switch {
	case i.binaryName == "":
		return errwrap.NewConfigInvalidError("app identity missing binary name")
	case i.envPrefix == "":
		return errwrap.NewConfigInvalidError("app identity missing env prefix")
	case i.configName == "":
		return errwrap.NewConfigInvalidError("app identity missing config name")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP evaluation service",
	Long: `Serve plate checks over HTTP.

Endpoints:
  GET  /v1/check?plate=&date=&time=   evaluate one query
  POST /v1/check/batch                evaluate a JSON array of queries
  GET  /v1/schedule                   the restriction schedule
  GET  /health, /health/{live,ready,startup}, /version, /metrics

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Reload config file (logging level applies immediately)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().Int("metrics-port", 9090, "Prometheus exporter port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("metrics.port", serveCmd.Flags().Lookup("metrics-port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()
	identity := GetAppIdentity()
	name := appid.BinaryName(identity)
	namespace := name
	if identity != nil {
		namespace = identity.TelemetryNamespace()
	}

	observability.InitServerLogger(name, cfg.Logging.Level, namespace)
	logger := observability.ServerLogger

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(name, cfg.Metrics.Port, namespace); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
		}
	}

	schedule := restriction.DefaultSchedule()
	if err := schedule.Validate(); err != nil {
		return errwrap.WrapConfigInvalid(cmd.Context(), err, "restriction schedule is invalid")
	}

	logger.Info("Initializing server",
		zap.String("service", name),
		zap.String("namespace", namespace),
		zap.String("version", versionInfo.Version),
		zap.String("addr", cfg.Server.Address()),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Int("metrics_port", observability.GetMetricsPort()))

	srv := server.New(cfg.Server, schedule)
	handlers.SetAppIdentity(identity)

	handlers.InitHealthManager(versionInfo.Version)
	if cfg.Health.Enabled {
		hm := handlers.GetHealthManager()
		hm.RegisterChecker("schedule", srv.Evaluation())
		if cfg.Metrics.Enabled {
			hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		}
		if identity != nil {
			hm.RegisterChecker("app_identity", identityHealthChecker{
				binaryName: identity.BinaryName,
				envPrefix:  identity.EnvPrefix,
				configName: identity.ConfigName,
			})
		}
	}

	// Shutdown handlers run last registered first.
	signals.OnShutdown(func(ctx context.Context) error {
		if err := logger.Sync(); err != nil {
			// stderr may already be closed.
			logger.Debug("Logger sync returned error", zap.Error(err))
		}
		return nil
	})
	signals.OnShutdown(func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.WrapInternal(ctx, err, "server shutdown failed")
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	})
	signals.OnReload(func(ctx context.Context) error {
		return reloadConfig(ctx, name, namespace)
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	metrics.SetServerStartTime(time.Now())

	errChan := make(chan error, 2)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
			return
		}
		errChan <- nil
	}()
	go func() {
		if err := signals.Listen(cmd.Context()); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return errwrap.WrapInternal(cmd.Context(), err, "server error")
	}
	return nil
}

// reloadConfig re-reads the config file on SIGHUP. Only the logging level
// is applied to the running server; listener settings need a restart.
func reloadConfig(ctx context.Context, name, namespace string) error {
	logger := observability.ServerLogger
	v := viper.GetViper()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Info("No config file found; keeping current configuration")
			return nil
		}
		logger.Error("Failed to reload config file", zap.String("file", v.ConfigFileUsed()), zap.Error(err))
		return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
	}

	cfg, err := config.Load(v)
	if err != nil {
		logger.Error("Reloaded configuration is invalid", zap.Error(err))
		return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
	}

	observability.InitServerLogger(name, cfg.Logging.Level, namespace)
	observability.ServerLogger.Info("Configuration reloaded",
		zap.String("file", v.ConfigFileUsed()),
		zap.String("logging_level", cfg.Logging.Level))
	return nil
}
