package main

import (
	"buslane/internal/fleet/handler"
	"buslane/internal/fleet/repository"
	"buslane/internal/fleet/service"
	"buslane/internal/fleet/validator"
	"buslane/pkg/app"
	"buslane/pkg/config"
	"buslane/pkg/events"
	"buslane/pkg/kafka"
	kafka_config "buslane/pkg/kafka/config"
	kafka_middleware "buslane/pkg/kafka/middleware"
)

const ServiceName = "fleet"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetAccounts()
	defer cfg.GracefulShutdown()

	publisher, producer := initPublisher(cfg)
	if producer != nil {
		defer producer.Close()
	}

	fleetHandler := initHandlers(cfg, publisher)

	application := app.NewApplication()
	application.SetApp(cfg, fleetHandler)
	application.Run()
}

// initPublisher wires the ledger event producer. The fleet service stays up
// without Kafka; events are simply not emitted.
func initPublisher(cfg *config.Config) (service.EventPublisher, *kafka.Producer) {
	kafkaCfg := kafka_config.Load()

	producer, err := kafka.NewProducer(kafkaCfg, events.TopicLedgerEvents, events.TopicLedgerEventsDLQ)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, ledger events disabled", "error", err)
		return nil, nil
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Ledger event producer initialized", "topic", events.TopicLedgerEvents)
	return producer, producer
}

func initHandlers(cfg *config.Config, publisher service.EventPublisher) *handler.FleetHandler {
	vehicleRepo := repository.NewMongoVehicleRepository(cfg)
	cityRepo := repository.NewMongoCityRepository(cfg)
	routeRepo := repository.NewMongoRouteRepository(cfg)
	assignmentRepo := repository.NewMongoAssignmentRepository(cfg)
	intervalRepo := repository.NewMongoIntervalRepository(cfg)
	lockRepo := repository.NewMongoSlotLockRepository(cfg)

	vehicleService := service.NewVehicleService(
		vehicleRepo,
		assignmentRepo,
		intervalRepo,
		validator.NewVehicleValidator(cfg.Log),
		cfg,
	)
	routeService := service.NewRouteService(routeRepo, cityRepo, cfg)
	assignmentService := service.NewAssignmentService(
		assignmentRepo,
		vehicleRepo,
		routeService,
		validator.NewAssignmentValidator(cfg.Log),
		cfg,
	)
	scheduleService := service.NewScheduleService(
		intervalRepo,
		lockRepo,
		vehicleRepo,
		assignmentRepo,
		validator.NewIntervalValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Fleet services initialized")

	return handler.NewFleetHandler(
		handler.NewVehicleHandler(vehicleService, cfg.Log),
		handler.NewAssignmentHandler(assignmentService, cfg.Log),
		handler.NewRouteHandler(routeService, cfg.Log),
		handler.NewScheduleHandler(scheduleService, cfg.Log),
	)
}
