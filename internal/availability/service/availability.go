package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityerrors "mentorhub/internal/availability/errors"
	"mentorhub/internal/availability/repository"
	"mentorhub/internal/availability/validator"
	"mentorhub/pkg/config"
	apperrors "mentorhub/pkg/errors"
	"mentorhub/pkg/model"
	"mentorhub/pkg/session"
)

type ReplaceInput struct {
	Slots   []*model.AvailabilitySlot
	Version int64
}

// MentorDirectory answers whether a mentor is publicly visible. The
// mentors service implements it; unapproved profiles surface as
// NotFound.
type MentorDirectory interface {
	GetBookableMentor(ctx context.Context, mentorID string) (*model.MentorProfile, error)
}

type AvailabilityService interface {
	Get(ctx context.Context, mentorID string) (*model.Availability, error)
	GetPublic(ctx context.Context, mentorID string) (*model.Availability, error)
	AddSlot(ctx context.Context, sess *session.Session, slot *model.AvailabilitySlot) (*model.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, sess *session.Session, slotID string) error
	Replace(ctx context.Context, sess *session.Session, input ReplaceInput) (*model.Availability, error)
	Covers(ctx context.Context, mentorID string, start, end time.Time) (bool, error)
}

type availabilityService struct {
	repo      repository.SlotRepository
	validator *validator.SlotValidator
	mentors   MentorDirectory
	cfg       *config.Config
}

func NewAvailabilityService(repo repository.SlotRepository, v *validator.SlotValidator, mentors MentorDirectory, cfg *config.Config) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		validator: v,
		mentors:   mentors,
		cfg:       cfg,
	}
}

func (s *availabilityService) Get(ctx context.Context, mentorID string) (*model.Availability, error) {
	if mentorID == "" {
		return nil, apperrors.InvalidInput("Mentor ID cannot be empty")
	}

	slots, err := s.repo.ListByMentor(ctx, mentorID)
	if err != nil {
		s.cfg.Log.Error("Failed to list availability slots", "mentor_id", mentorID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability", err)
	}

	set, err := s.repo.GetSet(ctx, mentorID)
	if err != nil {
		s.cfg.Log.Error("Failed to load availability set", "mentor_id", mentorID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability", err)
	}

	recurring, specific := model.Partition(slots)
	return &model.Availability{
		Recurring: recurring,
		Specific:  specific,
		Version:   set.Version,
	}, nil
}

// GetPublic is the mentee-facing read. It follows the same visibility
// rule as profile reads: an unapproved mentor's schedule looks missing.
func (s *availabilityService) GetPublic(ctx context.Context, mentorID string) (*model.Availability, error) {
	if _, err := s.mentors.GetBookableMentor(ctx, mentorID); err != nil {
		return nil, err
	}
	return s.Get(ctx, mentorID)
}

func (s *availabilityService) AddSlot(ctx context.Context, sess *session.Session, slot *model.AvailabilitySlot) (*model.AvailabilitySlot, error) {
	slot.MentorID = sess.UserID
	s.applyDefaults(slot)

	if err := s.validator.Validate(slot, time.Now().UTC()); err != nil {
		return nil, apperrors.Validation("Invalid availability slot", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Insert(ctx, slot); err != nil {
		s.cfg.Log.Error("Failed to add availability slot", "mentor_id", sess.UserID, "error", err)
		return nil, apperrors.Internal("Failed to add availability slot", err)
	}

	s.cfg.Log.Info("Availability slot added",
		"id", slot.ID,
		"mentor_id", slot.MentorID,
		"is_recurring", slot.IsRecurring,
	)
	return slot, nil
}

// DeleteSlot removes one of the caller's own slots. A missing slot is a
// hard 404; the client must learn its view is out of date.
func (s *availabilityService) DeleteSlot(ctx context.Context, sess *session.Session, slotID string) error {
	if slotID == "" {
		return apperrors.InvalidInput("Slot ID cannot be empty")
	}

	err := s.repo.Delete(ctx, sess.UserID, slotID)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Availability slot", slotID)
		}
		if errors.Is(err, availabilityerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid slot ID format")
		}
		s.cfg.Log.Error("Failed to delete availability slot", "mentor_id", sess.UserID, "slot_id", slotID, "error", err)
		return apperrors.Internal("Failed to delete availability slot", err)
	}

	s.cfg.Log.Info("Availability slot deleted", "mentor_id", sess.UserID, "slot_id", slotID)
	return nil
}

// Replace swaps the caller's entire availability in one shot. All slots
// must validate or nothing is written; per-slot failures come back
// keyed by their index in the submitted list.
func (s *availabilityService) Replace(ctx context.Context, sess *session.Session, input ReplaceInput) (*model.Availability, error) {
	if input.Version < 0 {
		return nil, apperrors.InvalidInput("version must not be negative")
	}

	now := time.Now().UTC()
	slotProblems := map[string]any{}
	for i, slot := range input.Slots {
		slot.MentorID = sess.UserID
		s.applyDefaults(slot)
		if err := s.validator.Validate(slot, now); err != nil {
			slotProblems[fmt.Sprintf("%d", i)] = err.Error()
		}
	}
	if len(slotProblems) > 0 {
		return nil, apperrors.Validation("One or more availability slots are invalid", slotProblems)
	}

	newVersion, err := s.repo.ReplaceAll(ctx, sess.UserID, input.Slots, input.Version)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrVersionMismatch) {
			return nil, apperrors.StaleVersion("Availability", input.Version)
		}
		s.cfg.Log.Error("Failed to replace availability", "mentor_id", sess.UserID, "error", err)
		return nil, apperrors.Internal("Failed to replace availability", err)
	}

	s.cfg.Log.Info("Availability replaced",
		"mentor_id", sess.UserID,
		"slots", len(input.Slots),
		"version", newVersion,
	)

	recurring, specific := model.Partition(input.Slots)
	return &model.Availability{
		Recurring: recurring,
		Specific:  specific,
		Version:   newVersion,
	}, nil
}

// Covers reports whether the window fits inside one of the mentor's
// slots. The window must stay within a single calendar day; sessions do
// not span midnight.
func (s *availabilityService) Covers(ctx context.Context, mentorID string, start, end time.Time) (bool, error) {
	start = start.UTC()
	end = end.UTC()

	date := start.Format(model.DateLayout)
	if end.Format(model.DateLayout) != date && !isMidnightBoundary(end, date) {
		return false, nil
	}

	slots, err := s.repo.ListByMentor(ctx, mentorID)
	if err != nil {
		return false, err
	}

	startHM := start.Format("15:04")
	endHM := end.Format("15:04")
	if endHM == "00:00" {
		endHM = "24:00" // midnight end sorts after any start
	}
	weekday := int(start.Weekday())

	for _, slot := range slots {
		if slot.StartTime > startHM || slot.EndTime < endHM {
			continue
		}
		if slot.IsRecurring {
			if slot.DayOfWeek != nil && *slot.DayOfWeek == weekday {
				return true, nil
			}
			continue
		}
		if slot.SpecificDate == date {
			return true, nil
		}
	}

	return false, nil
}

// isMidnightBoundary allows a window ending exactly at 00:00 of the
// next day.
func isMidnightBoundary(end time.Time, startDate string) bool {
	return end.Format("15:04") == "00:00" && end.AddDate(0, 0, -1).Format(model.DateLayout) == startDate
}

// applyDefaults fills the documented fallbacks: a 09:00-10:00 window,
// Monday for recurring slots and the next calendar day for one-off
// slots.
func (s *availabilityService) applyDefaults(slot *model.AvailabilitySlot) {
	if slot.StartTime == "" {
		slot.StartTime = s.cfg.DefaultSlotStart
	}
	if slot.EndTime == "" {
		slot.EndTime = s.cfg.DefaultSlotEnd
	}
	if slot.IsRecurring && slot.DayOfWeek == nil {
		day := s.cfg.DefaultRecurringDay
		slot.DayOfWeek = &day
	}
	if !slot.IsRecurring && slot.SpecificDate == "" {
		slot.SpecificDate = time.Now().UTC().AddDate(0, 0, 1).Format(model.DateLayout)
	}
}
