package main

import (
	bookingrepo "dometriks/internal/bookings/repository"
	"dometriks/internal/engineers/handler"
	"dometriks/internal/engineers/repository"
	"dometriks/internal/engineers/service"
	"dometriks/internal/engineers/validator"
	"dometriks/internal/events"
	"dometriks/pkg/app"
	"dometriks/pkg/config"
	"dometriks/pkg/kafka"
	kafkaconfig "dometriks/pkg/kafka/config"
	"dometriks/pkg/logger"
)

const ServiceName = "engineers"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Engineers service")

	publisher, closeProducer := initPublisher(cfg)
	defer closeProducer()

	engineerHandler := initHandler(cfg, publisher)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(engineerHandler)
	serverApp.Run()
}

// initHandler wires the dispatch flow: the engineers vertical plus the
// booking repository it claims against.
func initHandler(cfg *config.Config, publisher events.Publisher) *handler.EngineerHandler {
	engineerValidator := validator.NewEngineerValidator(cfg.Log)
	engineerRepo := repository.NewMongoEngineerRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)

	engineerService := service.NewEngineerService(engineerRepo, engineerValidator, cfg)
	assignmentService := service.NewAssignmentService(
		engineerRepo,
		bookingRepo,
		engineerValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Engineer services initialized", "database", cfg.MongoDatabaseName)
	return handler.NewEngineerHandler(engineerService, assignmentService, cfg.Log)
}

func initPublisher(cfg *config.Config) (events.Publisher, func()) {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Event publishing disabled")
		return events.NewNoopPublisher(), func() {}
	}

	producer, err := kafka.NewProducer(kafkaconfig.Load())
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}
	cfg.Log.Info("Event publishing enabled")

	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log), closeProducerFunc(producer, cfg.Log)
}

func closeProducerFunc(producer *kafka.Producer, log *logger.Logger) func() {
	return func() {
		if err := producer.Close(); err != nil {
			log.Warn("Failed to close Kafka producer", "error", err)
		}
	}
}
