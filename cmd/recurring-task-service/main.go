package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/taskfleet/eventd/internal/config"
	"github.com/taskfleet/eventd/internal/consumer"
	"github.com/taskfleet/eventd/internal/database"
	"github.com/taskfleet/eventd/internal/event"
	"github.com/taskfleet/eventd/internal/handlers"
	"github.com/taskfleet/eventd/internal/idempotency"
	"github.com/taskfleet/eventd/internal/logger"
	"github.com/taskfleet/eventd/internal/middleware"
	"github.com/taskfleet/eventd/internal/recurrence"
	"github.com/taskfleet/eventd/internal/recurring"
	"github.com/taskfleet/eventd/internal/subscription"
)

const serviceName = "recurring-task-service"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg := config.Load()
	debugMode := cfg.DebugMode || *debugFlag

	zapLogger, err := logger.New(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := logger.Sync(zapLogger); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	if cfg.DatabaseURL == "" {
		zapLogger.Fatal("database_url_not_configured")
	}

	zapLogger.Info("starting_service",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("pubsub_name", cfg.PubSubName),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	dedupStore, cleanup, err := newDedupStore(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_idempotency_store", zap.Error(err))
	}
	defer cleanup()

	generator := recurrence.NewGenerator(zapLogger)
	taskStore := recurring.NewPostgresStore(db)
	handler := recurring.NewHandler(generator, taskStore, zapLogger)
	pipeline := consumer.NewPipeline(dedupStore, handler, zapLogger)

	subs := subscription.ForRecurring(cfg.PubSubName)
	push := consumer.PushHandler(pipeline, zapLogger)
	healthChecker := handlers.NewHealthChecker(serviceName, zapLogger, db)

	r := mux.NewRouter()
	r.Use(middleware.Recovery(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc(subscription.DiscoveryRoute, subscription.Handler(subs)).Methods("GET")
	r.HandleFunc(event.RouteTaskEvents, push).Methods("POST")
	r.HandleFunc("/health", healthChecker.Health).Methods("GET")
	r.HandleFunc("/ready", healthChecker.Ready).Methods("GET")

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// newDedupStore picks the idempotency backend: Redis when configured,
// the in-process store otherwise.
func newDedupStore(cfg *config.Config, zapLogger *zap.Logger) (idempotency.Store, func(), error) {
	if cfg.RedisURL != "" {
		store, err := idempotency.NewRedisStore(cfg.RedisURL, cfg.IdempotencyTTL, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		zapLogger.Info("using_redis_idempotency_store")
		return store, func() {
			if err := store.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}, nil
	}

	store := idempotency.NewMemoryStore(zapLogger,
		idempotency.WithTTL(cfg.IdempotencyTTL),
		idempotency.WithMaxSize(cfg.IdempotencyMaxSize),
	)
	return store, func() {}, nil
}
