package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/workpoint-hq/webhook-svc/internal/config"
	"github.com/workpoint-hq/webhook-svc/internal/dispatcher"
	"github.com/workpoint-hq/webhook-svc/internal/events"
	"github.com/workpoint-hq/webhook-svc/internal/handlers"
	"github.com/workpoint-hq/webhook-svc/internal/logging"
	"github.com/workpoint-hq/webhook-svc/internal/messaging"
	natsclient "github.com/workpoint-hq/webhook-svc/internal/messaging/nats"
	"github.com/workpoint-hq/webhook-svc/internal/middleware"
	"github.com/workpoint-hq/webhook-svc/internal/registry"
	"github.com/workpoint-hq/webhook-svc/internal/server"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("webhook"))
	slog.SetDefault(logger)

	logger.Info("starting webhook service",
		slog.Int("port", cfg.Server.Port),
		slog.String("broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port)),
		slog.String("database_driver", cfg.Database.Driver),
	)

	// Initialize subscription store
	var repo registry.Repository
	switch cfg.Database.Driver {
	case "postgres":
		connString := cfg.Database.Postgres.ConnString()

		logger.Info("running database migrations")
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			log.Fatalf("Failed to initialize migrations: %v", err)
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		pgRepo, err := registry.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer pgRepo.Close()
		repo = pgRepo
	case "memory", "":
		logger.Warn("using in-memory subscription store, registrations are lost on restart")
		repo = registry.NewInMemoryRepository()
	default:
		log.Fatalf("Unknown database driver: %s (supported: memory, postgres)", cfg.Database.Driver)
	}

	// Broker and stream settings
	brokerCfg := natsclient.DefaultConfig()
	brokerCfg.Host = cfg.Broker.Host
	brokerCfg.Port = cfg.Broker.Port
	brokerCfg.Username = cfg.Broker.Username
	brokerCfg.Password = cfg.Broker.Password

	streamCfg := natsclient.DefaultStreamConfig(
		messaging.StreamWebhookEvents,
		[]string{messaging.SubjectWebhookEvents},
	)

	// Publisher connects lazily on first event, so a broker outage at boot
	// does not block the HTTP API.
	publisher := natsclient.NewPublisher(brokerCfg, streamCfg)
	defer publisher.Close()

	eventService := events.NewService(publisher, logger)

	// Background dispatcher draining the queue
	disp := dispatcher.New(repo, cfg.Dispatcher.DeliveryTimeout, logger)

	consumerCfg := natsclient.DefaultConsumerConfig(messaging.ConsumerWebhookDispatcher)
	if cfg.Dispatcher.MaxInFlight > 0 {
		consumerCfg.MaxAckPending = cfg.Dispatcher.MaxInFlight
	}

	consumer := natsclient.NewConsumer(brokerCfg, streamCfg, consumerCfg, disp.HandleMessage, logger)
	if err := consumer.Start(context.Background()); err != nil {
		// The management API stays useful without the consumer, so keep
		// serving; published events accumulate on the stream until a
		// healthy instance drains them.
		logger.Error("failed to start consumer, webhook dispatch disabled", logging.Error(err))
	}
	defer consumer.Stop()

	// HTTP management surface
	handler := handlers.New(repo, eventService, logger)
	router := server.NewRouter(handler, middleware.Recovery(eventService, logger))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("webhook service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("stopped")
}
