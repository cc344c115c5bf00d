package main

import (
	"vetsched/internal/appointments/events"
	"vetsched/internal/appointments/handler"
	"vetsched/internal/appointments/registry"
	"vetsched/internal/appointments/repository"
	"vetsched/internal/appointments/service"
	"vetsched/internal/appointments/validator"
	"vetsched/pkg/app"
	"vetsched/pkg/client"
	"vetsched/pkg/config"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Appointments service")
	appointmentService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewAppointmentHandler(appointmentService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AppointmentService {
	patientClient := client.NewPatientClient(cfg.PatientRegistryURL, cfg.RegistryTimeout)
	staffClient := client.NewStaffClient(cfg.StaffRegistryURL, cfg.RegistryTimeout)
	reg := registry.NewRegistry(patientClient, staffClient, cfg.Log)

	var publisher service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AppointmentEventTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
		}
		publisher = kafkaPublisher
		cfg.Log.Info("Appointment event publishing enabled", "topic", cfg.AppointmentEventTopic)
	}

	appointmentService := service.NewAppointmentService(
		repository.NewMongoAppointmentRepository(cfg),
		repository.NewSlotLockRepository(cfg),
		reg,
		reg,
		validator.NewAppointmentValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Appointment service initialized", "database", cfg.MongoDatabaseName)
	return appointmentService
}
