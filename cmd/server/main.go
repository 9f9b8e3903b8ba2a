package main

import (
	availabilityhandler "mentorhub/internal/availability/handler"
	availabilityrepo "mentorhub/internal/availability/repository"
	availabilityservice "mentorhub/internal/availability/service"
	availabilityvalidator "mentorhub/internal/availability/validator"
	bookinghandler "mentorhub/internal/bookings/handler"
	bookingrepo "mentorhub/internal/bookings/repository"
	bookingservice "mentorhub/internal/bookings/service"
	bookingvalidator "mentorhub/internal/bookings/validator"
	"mentorhub/internal/events"
	"mentorhub/internal/health"
	mentorhandler "mentorhub/internal/mentors/handler"
	mentorrepo "mentorhub/internal/mentors/repository"
	mentorservice "mentorhub/internal/mentors/service"
	mentorvalidator "mentorhub/internal/mentors/validator"
	"mentorhub/pkg/app"
	"mentorhub/pkg/config"
	kafkaconfig "mentorhub/pkg/kafka/config"
)

const ServiceName = "mentorhub"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting MentorHub server")

	publisher := initPublisher(cfg)

	mentorSvc := initMentors(cfg, publisher)
	availabilitySvc := initAvailability(cfg, mentorSvc)
	bookingSvc := initBookings(cfg, mentorSvc, availabilitySvc, publisher)

	sweeper := bookingservice.NewCompletionSweeper(bookingSvc, cfg.CompletionSweepInterval, cfg.Log)

	serverApp := app.NewApplication(cfg)
	serverApp.AddWorker(sweeper)
	serverApp.AddWorker(publisher)
	serverApp.SetApp(
		health.NewHandler(cfg.Mongo, cfg.Log),
		bookinghandler.NewBookingHandler(bookingSvc, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilitySvc, cfg.Log),
		mentorhandler.NewMentorHandler(mentorSvc, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, domain events will not be published")
		return events.NopPublisher{}
	}

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	publisher, err := events.NewKafkaPublisher(
		kafkaCfg,
		cfg.BookingEventsTopic,
		cfg.ModerationEventsTopic,
		cfg.EventsDLQTopic,
		ServiceName,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
	}

	cfg.Log.Info("Kafka publisher initialized",
		"booking_topic", cfg.BookingEventsTopic,
		"moderation_topic", cfg.ModerationEventsTopic,
	)
	return publisher
}

func initMentors(cfg *config.Config, publisher events.Publisher) mentorservice.MentorService {
	svc := mentorservice.NewMentorService(
		mentorrepo.NewMongoMentorRepository(cfg),
		mentorvalidator.NewMentorValidator(cfg.Log),
		publisher,
		cfg,
	)
	cfg.Log.Info("Mentor service initialized", "database", cfg.MongoDatabaseName)
	return svc
}

func initAvailability(cfg *config.Config, mentors availabilityservice.MentorDirectory) availabilityservice.AvailabilityService {
	svc := availabilityservice.NewAvailabilityService(
		availabilityrepo.NewMongoSlotRepository(cfg),
		availabilityvalidator.NewSlotValidator(cfg.Log),
		mentors,
		cfg,
	)
	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName)
	return svc
}

func initBookings(
	cfg *config.Config,
	mentors bookingservice.MentorDirectory,
	availability bookingservice.AvailabilityChecker,
	publisher events.Publisher,
) bookingservice.BookingService {
	svc := bookingservice.NewBookingService(
		bookingrepo.NewMongoBookingRepository(cfg),
		mentors,
		availability,
		bookingvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return svc
}
