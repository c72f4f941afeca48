package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taskfleet/eventd/internal/broker"
	"github.com/taskfleet/eventd/internal/config"
	"github.com/taskfleet/eventd/internal/logger"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg := config.Load()
	debugMode := cfg.DebugMode || *debugFlag

	zapLogger, err := logger.New("pubsub-bridge", debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := logger.Sync(zapLogger); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	if len(cfg.ConsumerEndpoints) == 0 {
		zapLogger.Fatal("no_consumer_endpoints_configured")
	}

	zapLogger.Info("starting_bridge",
		zap.Bool("debug_mode", debugMode),
		zap.Strings("consumer_endpoints", cfg.ConsumerEndpoints),
	)

	// Retry the broker connection to ride out RabbitMQ startup delays.
	const maxRetries = 10
	const initialDelay = 2 * time.Second
	var source *broker.TopicConsumer
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		source, lastErr = broker.NewTopicConsumer(cfg.RabbitMQURL)
		if lastErr == nil {
			zapLogger.Info("connected_to_rabbitmq")
			break
		}

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(lastErr),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}
	if lastErr != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
			zap.Int("max_retries", maxRetries),
			zap.Error(lastErr),
		)
	}
	defer func() {
		if err := source.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	bridge := broker.NewBridge(source, cfg.ConsumerEndpoints, zapLogger)

	done := make(chan error, 1)
	go func() {
		done <- bridge.Run(ctx)
	}()

	zapLogger.Info("bridge_started_forwarding_events")

	select {
	case <-sigChan:
		zapLogger.Info("shutdown_signal_received_stopping_bridge")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			zapLogger.Fatal("bridge_stopped_with_error", zap.Error(err))
		}
	}

	zapLogger.Info("bridge_stopped")
}
