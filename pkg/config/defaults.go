package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "mentorhub"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultCompletionSweepInterval = 5 * time.Minute

	// Draft slot defaults: a one-hour morning window, Monday for
	// recurring slots.
	DefaultDefaultSlotStart    = "09:00"
	DefaultDefaultSlotEnd      = "10:00"
	DefaultDefaultRecurringDay = 1

	DefaultKafkaEnabled          = false
	DefaultBookingEventsTopic    = "mentorhub.booking-events"
	DefaultModerationEventsTopic = "mentorhub.moderation-events"
	DefaultEventsDLQTopic        = "mentorhub.events-dlq"

	DefaultPaginationLimit = 50
)
