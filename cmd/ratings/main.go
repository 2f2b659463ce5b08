package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"buslane/internal/ratings/consumer"
	"buslane/internal/ratings/repository"
	"buslane/internal/ratings/service"
	"buslane/pkg/config"
	kafka_config "buslane/pkg/kafka/config"
)

const ServiceName = "ratings"

// The ratings worker has no HTTP surface. It consumes rating events and
// maintains the running average on the vehicle documents.
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	ratingService := service.NewRatingService(repository.NewMongoRatingRepository(cfg), cfg)

	ratingConsumer, err := consumer.NewRatingConsumer(kafka_config.Load(), ratingService, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create rating consumer", "error", err)
	}
	defer ratingConsumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerErrors := make(chan error, 1)
	go func() {
		cfg.Log.Info("Rating consumer starting")
		consumerErrors <- ratingConsumer.Start(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-consumerErrors:
		if err != nil && err != context.Canceled {
			cfg.Log.Fatal("Rating consumer failed", "error", err)
		}
	case sig := <-shutdown:
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
		<-consumerErrors
	}

	cfg.Log.Info("Rating worker stopped gracefully")
}
