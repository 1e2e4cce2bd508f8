// Command worker answers estimation requests read from Kafka.  Every request
// message on kafka.request_topic produces exactly one result message on
// kafka.result_topic; failed estimates carry the error and are not retried.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/simpol/internal/application/estimation"
	"github.com/turtacn/simpol/internal/bootstrap"
	"github.com/turtacn/simpol/internal/config"
	"github.com/turtacn/simpol/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/simpol/internal/interfaces/http"
	"github.com/turtacn/simpol/internal/interfaces/http/handlers"
)

const defaultHealthPort = 8081

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port of the /healthz, /readyz and metrics listener; 0 disables it")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *healthPort); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, healthPort int) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateWorker(); err != nil {
		return err
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logging.SetDefault(logger)

	rt, err := bootstrap.New(cfg, logger, bootstrap.SourceStream)
	if err != nil {
		logger.Error("runtime initialisation failed", logging.Err(err))
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("runtime close failed", logging.Err(err))
		}
	}()

	producer, err := kafka.NewProducer(bootstrap.ProducerConfig(cfg.Kafka), logger)
	if err != nil {
		return err
	}
	defer producer.Close()

	consumer, err := kafka.NewConsumer(bootstrap.ConsumerConfig(cfg.Kafka), logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	processor := estimation.NewStreamProcessor(rt.Service, producer, cfg.Kafka.ResultTopic, rt.Metrics, logger)
	consumer.Subscribe(newMessageHandler(processor))
	consumer.SetDeadLetterPublisher(producer)

	if healthPort > 0 {
		srv := httpserver.NewServer(httpserver.ServerConfig{
			Host:            cfg.Server.Host,
			Port:            healthPort,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		}, newHealthRouter(rt), logger)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("health server failed", logging.Err(err))
			}
		}()
		defer func() { _ = srv.Stop(context.Background()) }()
	}

	logger.Info("starting simpol worker",
		logging.String("version", version),
		logging.String("request_topic", cfg.Kafka.RequestTopic),
		logging.String("result_topic", cfg.Kafka.ResultTopic),
		logging.String("dead_letter_topic", cfg.Kafka.DeadLetterTopic),
		logging.String("group_id", cfg.Kafka.GroupID))

	if err := consumer.Run(ctx); err != nil {
		logger.Error("consumer stopped", logging.Err(err))
		return err
	}
	logger.Info("simpol worker stopped",
		logging.Int("processed", int(consumer.Processed())),
		logging.Int("failed", int(consumer.Failed())),
		logging.Int("dead_lettered", int(consumer.DeadLettered())))
	return nil
}

// newMessageHandler passes request payloads to the processor.  The message
// key is the request id; the request-id header stands in when the key is
// empty.
func newMessageHandler(p *estimation.StreamProcessor) kafka.MessageHandler {
	return func(ctx context.Context, msg *kafka.Message) error {
		key := string(msg.Key)
		if key == "" {
			key = msg.Headers[kafka.HeaderRequestID]
		}
		if key != "" {
			ctx = logging.WithRequestID(ctx, key)
		}
		return p.Process(ctx, key, msg.Value)
	}
}

// newHealthRouter serves the health checks and, when enabled, the metrics.
func newHealthRouter(rt *bootstrap.Runtime) http.Handler {
	var checks []handlers.HealthChecker
	if rt.Redis != nil {
		checks = append(checks, handlers.CheckFunc{ComponentName: "redis", Fn: rt.Redis.Ping})
	}
	rc := httpserver.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version, checks...),
		Logger:        rt.Logger,
	}
	if rt.Config.Metrics.Enabled {
		rc.MetricsHandler = rt.Collector.Handler()
		rc.MetricsPath = rt.Config.Metrics.Path
	}
	return httpserver.NewRouter(rc)
}

//Personal.AI order the ending
