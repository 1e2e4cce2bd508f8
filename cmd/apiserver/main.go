// Command apiserver serves the SIMPOL.1 estimator over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/simpol/internal/bootstrap"
	"github.com/turtacn/simpol/internal/config"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/simpol/internal/interfaces/http"
	"github.com/turtacn/simpol/internal/interfaces/http/handlers"
	"github.com/turtacn/simpol/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP port (overrides server.port)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, port int) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logging.SetDefault(logger)

	rt, err := bootstrap.New(cfg, logger, bootstrap.SourceHTTP)
	if err != nil {
		logger.Error("runtime initialisation failed", logging.Err(err))
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("runtime close failed", logging.Err(err))
		}
	}()

	if configPath != "" {
		watchLogLevel(configPath, logger)
	}

	srv := httpserver.NewServer(httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, newRouter(rt), logger)

	logger.Info("starting simpol API server",
		logging.String("version", version),
		logging.String("addr", srv.Addr()),
		logging.Bool("cache", rt.Redis != nil),
		logging.Bool("report_upload", rt.Publisher != nil))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

// newRouter wires the runtime into the HTTP route tree.
func newRouter(rt *bootstrap.Runtime) http.Handler {
	cfg := rt.Config

	var opts []handlers.EstimationHandlerOption
	opts = append(opts, handlers.WithMaxBodyBytes(cfg.Server.MaxBodySize))
	if rt.Publisher != nil {
		opts = append(opts, handlers.WithReportPublisher(rt.Publisher))
	}

	rc := httpserver.RouterConfig{
		EstimationHandler: handlers.NewEstimationHandler(rt.Service, rt.Logger, opts...),
		HealthHandler:     handlers.NewHealthHandler(version, healthCheckers(rt)...),
		Logger:            rt.Logger,
		CORSOrigins:       cfg.Server.CORSOrigins,
		RequestTimeout:    cfg.Server.RequestTimeout,
	}
	if cfg.Metrics.Enabled {
		rc.Metrics = rt.Metrics
		rc.MetricsHandler = rt.Collector.Handler()
		rc.MetricsPath = cfg.Metrics.Path
	}
	if cfg.Server.RateLimitRPS > 0 {
		rl := middleware.DefaultRateLimitConfig(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
		rc.RateLimit = &rl
	}
	return httpserver.NewRouter(rc)
}

// watchLogLevel applies log.level changes from the config file without a
// restart.  Other settings need a restart.
func watchLogLevel(path string, logger logging.Logger) {
	err := config.Watch(path, func(c *config.Config) {
		level, err := logging.ParseLevel(c.Log.Level)
		if err != nil {
			return
		}
		logger.SetLevel(level)
		logger.Info("config reloaded", logging.String("log_level", string(level)))
	}, func(err error) {
		logger.Warn("config reload rejected", logging.Err(err))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}

//Personal.AI order the ending
