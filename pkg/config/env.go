package config

import "time"

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort = "PORT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvPatientRegistryURL = "PATIENT_REGISTRY_URL"
	EnvStaffRegistryURL   = "STAFF_REGISTRY_URL"
	EnvRegistryTimeout    = "REGISTRY_TIMEOUT"

	EnvDefaultDurationMinutes = "DEFAULT_DURATION_MINUTES"

	EnvKafkaBrokers          = "KAFKA_BROKERS"
	EnvAppointmentEventTopic = "APPOINTMENT_EVENT_TOPIC"

	EnvLogLevel = "LOG_LEVEL"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "vetsched"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8084"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 << 20

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultPatientRegistryURL = "http://localhost:8082"
	DefaultStaffRegistryURL   = "http://localhost:8081"
	DefaultRegistryTimeout    = 5 * time.Second

	DefaultDefaultDurationMinutes = 30
	MinDurationMinutes            = 15
	MaxDurationMinutes            = 240

	DefaultAppointmentEventTopic = "appointment-events"

	DefaultLogLevel = "info"
)
