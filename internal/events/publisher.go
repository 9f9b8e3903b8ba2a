package events

import (
	"context"
	"time"

	"mentorhub/pkg/kafka"
	kafkaconfig "mentorhub/pkg/kafka/config"
	"mentorhub/pkg/logger"
	"mentorhub/pkg/model"
)

// Event types carried in the event-type header.
const (
	BookingRequested        = "booking.requested"
	BookingConfirmed        = "booking.confirmed"
	BookingDeclined         = "booking.declined"
	BookingCancelled        = "booking.cancelled"
	BookingCompleted        = "booking.completed"
	BookingMeetingLinkAdded = "booking.meeting_link_added"
	BookingFeedbackAdded    = "booking.feedback_added"

	MentorApplied  = "mentor.applied"
	MentorApproved = "mentor.approved"
	MentorRejected = "mentor.rejected"
)

// Publisher emits domain events for downstream consumers (notification
// delivery lives in a separate service).
type Publisher interface {
	PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking)
	PublishModerationEvent(ctx context.Context, eventType string, profile *model.MentorProfile)
	Stop()
}

type bookingEventPayload struct {
	BookingID string    `json:"booking_id"`
	MentorID  string    `json:"mentor_id"`
	MenteeID  string    `json:"mentee_id"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Topic     string    `json:"topic"`
}

type moderationEventPayload struct {
	MentorID string `json:"mentor_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

// KafkaPublisher writes events to the booking and moderation topics.
// Publish failures are logged, never surfaced to the request path: a
// booking must not fail because the broker is down.
type KafkaPublisher struct {
	bookingProducer    *kafka.Producer
	moderationProducer *kafka.Producer
	source             string
	log                *logger.Logger
}

func NewKafkaPublisher(cfg *kafkaconfig.Config, bookingTopic, moderationTopic, dlqTopic, source string, log *logger.Logger) (*KafkaPublisher, error) {
	bookingProducer, err := kafka.NewProducer(cfg, bookingTopic, dlqTopic)
	if err != nil {
		return nil, err
	}

	moderationProducer, err := kafka.NewProducer(cfg, moderationTopic, dlqTopic)
	if err != nil {
		_ = bookingProducer.Close()
		return nil, err
	}

	return &KafkaPublisher{
		bookingProducer:    bookingProducer,
		moderationProducer: moderationProducer,
		source:             source,
		log:                log,
	}, nil
}

func (p *KafkaPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) {
	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithEventType(eventType).
		WithSource(p.source).
		WithValue(bookingEventPayload{
			BookingID: booking.ID,
			MentorID:  booking.Mentor.ID,
			MenteeID:  booking.Mentee.ID,
			Status:    string(booking.Status),
			StartTime: booking.StartTime,
			EndTime:   booking.EndTime,
			Topic:     booking.Topic,
		}).
		Build()

	if err := p.bookingProducer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func (p *KafkaPublisher) PublishModerationEvent(ctx context.Context, eventType string, profile *model.MentorProfile) {
	msg := kafka.NewMessage().
		WithKey(profile.User.ID).
		WithEventType(eventType).
		WithSource(p.source).
		WithValue(moderationEventPayload{
			MentorID: profile.User.ID,
			Name:     profile.User.Name,
			Status:   string(profile.Status),
			Reason:   profile.ModerationReason,
		}).
		Build()

	if err := p.moderationProducer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish moderation event",
			"event_type", eventType,
			"mentor_id", profile.User.ID,
			"error", err,
		)
	}
}

func (p *KafkaPublisher) Stop() {
	if err := p.bookingProducer.Close(); err != nil {
		p.log.Error("Failed to close booking event producer", "error", err)
	}
	if err := p.moderationProducer.Close(); err != nil {
		p.log.Error("Failed to close moderation event producer", "error", err)
	}
}

// NopPublisher discards events. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishBookingEvent(context.Context, string, *model.Booking)          {}
func (NopPublisher) PublishModerationEvent(context.Context, string, *model.MentorProfile) {}
func (NopPublisher) Stop()                                                                {}
