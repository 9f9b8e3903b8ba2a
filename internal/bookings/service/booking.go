package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "mentorhub/internal/bookings/errors"
	"mentorhub/internal/bookings/repository"
	"mentorhub/internal/bookings/validator"
	"mentorhub/internal/events"
	"mentorhub/pkg/config"
	apperrors "mentorhub/pkg/errors"
	"mentorhub/pkg/model"
	"mentorhub/pkg/sanitizer"
	"mentorhub/pkg/session"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MentorDirectory resolves the mentor side of a booking request.
type MentorDirectory interface {
	GetBookableMentor(ctx context.Context, mentorID string) (*model.MentorProfile, error)
}

// AvailabilityChecker reports whether a window falls inside the
// mentor's published availability.
type AvailabilityChecker interface {
	Covers(ctx context.Context, mentorID string, start, end time.Time) (bool, error)
}

// CreateBookingInput is the mentee-supplied part of a booking request;
// the participants are resolved server-side.
type CreateBookingInput struct {
	MentorID    string    `json:"mentor_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Topic       string    `json:"topic"`
	Description string    `json:"description"`
}

type ListBookingsInput struct {
	Role   model.Actor
	Filter model.BookingFilter
	Search string
	Limit  int
	Offset int64
}

type BookingService interface {
	Request(ctx context.Context, sess *session.Session, input CreateBookingInput) (*model.Booking, error)
	GetByID(ctx context.Context, sess *session.Session, id string) (*model.Booking, error)
	List(ctx context.Context, sess *session.Session, input ListBookingsInput) ([]*model.Booking, int64, error)
	Confirm(ctx context.Context, sess *session.Session, id string, version int64) (*model.Booking, error)
	Decline(ctx context.Context, sess *session.Session, id string, version int64, reason string) (*model.Booking, error)
	Cancel(ctx context.Context, sess *session.Session, id string, version int64, reason string) (*model.Booking, error)
	AddMeetingLink(ctx context.Context, sess *session.Session, id string, version int64, link string) (*model.Booking, error)
	AddFeedback(ctx context.Context, sess *session.Session, id string, version int64, rating int, feedback string) (*model.Booking, error)
	CompleteElapsed(ctx context.Context) (int64, error)
}

type bookingService struct {
	repo         repository.BookingRepository
	directory    MentorDirectory
	availability AvailabilityChecker
	validator    *validator.BookingValidator
	publisher    events.Publisher
	cfg          *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	directory MentorDirectory,
	availability AvailabilityChecker,
	v *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		directory:    directory,
		availability: availability,
		validator:    v,
		publisher:    publisher,
		cfg:          cfg,
	}
}

func (s *bookingService) Request(ctx context.Context, sess *session.Session, input CreateBookingInput) (*model.Booking, error) {
	if input.MentorID == "" {
		return nil, apperrors.InvalidInput("mentor_id cannot be empty")
	}

	profile, err := s.directory.GetBookableMentor(ctx, input.MentorID)
	if err != nil {
		return nil, err
	}
	if !profile.CanReceiveBookings() {
		return nil, apperrors.Conflict("Mentor is not accepting booking requests")
	}

	now := time.Now().UTC()
	booking := &model.Booking{
		Mentor: profile.User,
		Mentee: model.PartyRef{ID: sess.UserID, Name: sess.Name, Email: sess.Email},
		// Timestamps are stored as a canonical UTC pair, truncated to
		// the minute; clients localize for display.
		StartTime:   input.StartTime.UTC().Truncate(time.Minute),
		EndTime:     input.EndTime.UTC().Truncate(time.Minute),
		Topic:       sanitizer.NormalizeTopic(input.Topic),
		Description: sanitizer.TrimAndNormalize(input.Description),
		Status:      model.BookingPending,
		Version:     1,
	}

	if err := s.validator.ValidateRequest(booking, now); err != nil {
		return nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	covered, err := s.availability.Covers(ctx, input.MentorID, booking.StartTime, booking.EndTime)
	if err != nil {
		s.cfg.Log.Error("Failed to check mentor availability", "mentor_id", input.MentorID, "error", err)
		return nil, apperrors.Internal("Failed to check mentor availability", err)
	}
	if !covered {
		return nil, apperrors.Validation("Requested time is outside the mentor's availability", nil)
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		overlap, err := s.repo.HasActiveOverlap(sessCtx, input.MentorID, booking.StartTime, booking.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check booking overlap", err)
		}
		if overlap {
			return apperrors.Conflict("Mentor already has a booking in the requested window")
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "mentor_id", input.MentorID, "mentee_id", sess.UserID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking requested",
		"id", booking.ID,
		"mentor_id", booking.Mentor.ID,
		"mentee_id", booking.Mentee.ID,
		"start_time", booking.StartTime,
	)
	s.publisher.PublishBookingEvent(ctx, events.BookingRequested, booking)

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, sess *session.Session, id string) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, ok := booking.ActorFor(sess.UserID); !ok && !sess.IsAdmin() {
		return nil, apperrors.Forbidden("You are not a participant of this booking")
	}

	return booking, nil
}

func (s *bookingService) List(ctx context.Context, sess *session.Session, input ListBookingsInput) ([]*model.Booking, int64, error) {
	q := repository.ListQuery{
		UserID: sess.UserID,
		Role:   input.Role,
		Filter: input.Filter,
		Search: sanitizer.TrimAndNormalize(input.Search),
		Now:    time.Now().UTC(),
		Limit:  input.Limit,
		Offset: input.Offset,
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, q)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "user_id", sess.UserID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.List(ctx, q)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "user_id", sess.UserID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Confirm(ctx context.Context, sess *session.Session, id string, version int64) (*model.Booking, error) {
	return s.transition(ctx, sess, id, version, model.ActionConfirm, events.BookingConfirmed, nil)
}

func (s *bookingService) Decline(ctx context.Context, sess *session.Session, id string, version int64, reason string) (*model.Booking, error) {
	reason = sanitizer.TrimAndNormalize(reason)
	return s.transition(ctx, sess, id, version, model.ActionDecline, events.BookingDeclined, func(b *model.Booking, set bson.M) error {
		b.CancelReason = reason
		set["cancel_reason"] = reason
		return nil
	})
}

func (s *bookingService) Cancel(ctx context.Context, sess *session.Session, id string, version int64, reason string) (*model.Booking, error) {
	reason = sanitizer.TrimAndNormalize(reason)
	return s.transition(ctx, sess, id, version, model.ActionCancel, events.BookingCancelled, func(b *model.Booking, set bson.M) error {
		b.CancelReason = reason
		set["cancel_reason"] = reason
		return nil
	})
}

func (s *bookingService) AddMeetingLink(ctx context.Context, sess *session.Session, id string, version int64, link string) (*model.Booking, error) {
	normalized := sanitizer.NormalizeMeetingLink(link)
	if normalized == "" {
		return nil, apperrors.InvalidInput("meeting_link must be a valid http(s) URL")
	}
	return s.transition(ctx, sess, id, version, model.ActionAddMeetingLink, events.BookingMeetingLinkAdded, func(b *model.Booking, set bson.M) error {
		b.MeetingLink = normalized
		set["meeting_link"] = normalized
		return nil
	})
}

func (s *bookingService) AddFeedback(ctx context.Context, sess *session.Session, id string, version int64, rating int, feedback string) (*model.Booking, error) {
	feedback = sanitizer.TrimAndNormalize(feedback)
	if err := s.validator.ValidateFeedback(rating, feedback); err != nil {
		return nil, apperrors.Validation("Invalid feedback", map[string]any{"error": err.Error()})
	}
	return s.transition(ctx, sess, id, version, model.ActionAddFeedback, events.BookingFeedbackAdded, func(b *model.Booking, set bson.M) error {
		if b.Rating != nil {
			return apperrors.Conflict("Feedback has already been submitted for this booking")
		}
		b.Rating = &rating
		b.Feedback = feedback
		set["rating"] = rating
		set["feedback"] = feedback
		return nil
	})
}

// transition runs the shared lifecycle update: resolve the caller's
// role, consult the state machine, apply the version-guarded write and
// publish the resulting event.
func (s *bookingService) transition(
	ctx context.Context,
	sess *session.Session,
	id string,
	version int64,
	action model.BookingAction,
	eventType string,
	apply func(b *model.Booking, set bson.M) error,
) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, ok := booking.ActorFor(sess.UserID)
	if !ok {
		return nil, apperrors.Forbidden("You are not a participant of this booking")
	}

	next, allowed := model.NextStatus(booking.Status, action, actor)
	if !allowed {
		return nil, apperrors.Conflict(fmt.Sprintf(
			"Action %q is not allowed for the %s while the booking is %s",
			action, actor, booking.Status,
		))
	}

	set := bson.M{"status": string(next)}
	if apply != nil {
		if err := apply(booking, set); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateVersioned(ctx, id, version, set); err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrVersionMismatch):
			return nil, apperrors.StaleVersion("Booking", version)
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", id)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to update booking", "id", id, "action", action, "error", err)
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	booking.Status = next
	booking.Version = version + 1

	s.cfg.Log.Info("Booking updated",
		"id", id,
		"action", action,
		"actor", actor,
		"status", next,
	)
	s.publisher.PublishBookingEvent(ctx, eventType, booking)

	return booking, nil
}

// CompleteElapsed is invoked by the completion sweeper; clients never
// request completion directly.
func (s *bookingService) CompleteElapsed(ctx context.Context) (int64, error) {
	count, err := s.repo.CompleteElapsed(ctx, time.Now().UTC())
	if err != nil {
		s.cfg.Log.Error("Completion sweep failed", "error", err)
		return 0, apperrors.Internal("Failed to complete elapsed bookings", err)
	}
	if count > 0 {
		s.cfg.Log.Info("Completion sweep finished", "completed", count)
	}
	return count, nil
}

func (s *bookingService) load(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}
