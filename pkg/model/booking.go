package model

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending           BookingStatus = "pending"
	BookingConfirmed         BookingStatus = "confirmed"
	BookingCompleted         BookingStatus = "completed"
	BookingCancelledByMentee BookingStatus = "cancelled_by_mentee"
	BookingCancelledByMentor BookingStatus = "cancelled_by_mentor"
)

// Actor identifies which half of the mentorship relationship is acting.
// A user can be mentor on one booking and mentee on another.
type Actor string

const (
	ActorMentor Actor = "mentor"
	ActorMentee Actor = "mentee"
)

type BookingAction string

const (
	ActionConfirm        BookingAction = "confirm"
	ActionDecline        BookingAction = "decline"
	ActionCancel         BookingAction = "cancel"
	ActionAddMeetingLink BookingAction = "add_meeting_link"
	ActionAddFeedback    BookingAction = "add_feedback"
)

// PartyRef is the denormalized participant reference stored on a booking.
type PartyRef struct {
	ID    string `json:"id" bson:"id" validate:"required"`
	Name  string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" bson:"email" validate:"required,email"`
}

type Booking struct {
	ID           string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Mentor       PartyRef      `json:"mentor" bson:"mentor" validate:"required"`
	Mentee       PartyRef      `json:"mentee" bson:"mentee" validate:"required"`
	StartTime    time.Time     `json:"start_time" bson:"start_time" validate:"required"`
	EndTime      time.Time     `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Topic        string        `json:"topic" bson:"topic" validate:"required,min=2,max=120"`
	Description  string        `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	Status       BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed completed cancelled_by_mentee cancelled_by_mentor"`
	MeetingLink  string        `json:"meeting_link,omitempty" bson:"meeting_link,omitempty" validate:"omitempty,url"`
	Rating       *int          `json:"rating,omitempty" bson:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Feedback     string        `json:"feedback,omitempty" bson:"feedback,omitempty" validate:"omitempty,max=2000"`
	CancelReason string        `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty" validate:"omitempty,max=500"`
	Version      int64         `json:"booking_version" bson:"booking_version"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type transition struct {
	from   BookingStatus
	action BookingAction
	actor  Actor
}

// transitions is the full actor-gated lifecycle table. completed is only
// ever produced by the server-side completion sweep, never requested by
// a client, so no row leads into it.
var transitions = map[transition]BookingStatus{
	{BookingPending, ActionConfirm, ActorMentor}:          BookingConfirmed,
	{BookingPending, ActionDecline, ActorMentor}:          BookingCancelledByMentor,
	{BookingPending, ActionCancel, ActorMentee}:           BookingCancelledByMentee,
	{BookingConfirmed, ActionCancel, ActorMentor}:         BookingCancelledByMentor,
	{BookingConfirmed, ActionCancel, ActorMentee}:         BookingCancelledByMentee,
	{BookingConfirmed, ActionAddMeetingLink, ActorMentor}: BookingConfirmed,
	{BookingCompleted, ActionAddFeedback, ActorMentee}:    BookingCompleted,
}

// NextStatus returns the status an action leads to and whether the
// action is allowed for the given actor in the current status.
func NextStatus(from BookingStatus, action BookingAction, actor Actor) (BookingStatus, bool) {
	next, ok := transitions[transition{from, action, actor}]
	return next, ok
}

// ActorFor resolves which side of the booking a user is on.
func (b *Booking) ActorFor(userID string) (Actor, bool) {
	switch userID {
	case b.Mentor.ID:
		return ActorMentor, true
	case b.Mentee.ID:
		return ActorMentee, true
	default:
		return "", false
	}
}

// Counterpart returns the other party from the given actor's view.
func (b *Booking) Counterpart(actor Actor) PartyRef {
	if actor == ActorMentor {
		return b.Mentee
	}
	return b.Mentor
}

type BookingFilter string

const (
	FilterAll               BookingFilter = "all"
	FilterPending           BookingFilter = "pending"
	FilterConfirmed         BookingFilter = "confirmed"
	FilterCompleted         BookingFilter = "completed"
	FilterCancelledByMentee BookingFilter = "cancelled_by_mentee"
	FilterCancelledByMentor BookingFilter = "cancelled_by_mentor"

	// FilterUpcoming matches pending or confirmed bookings scheduled
	// after now; FilterCancelled matches either cancellation status.
	FilterUpcoming  BookingFilter = "upcoming"
	FilterCancelled BookingFilter = "cancelled"
)

func ParseBookingFilter(s string) (BookingFilter, bool) {
	if s == "" {
		return FilterAll, true
	}
	f := BookingFilter(strings.ToLower(s))
	switch f {
	case FilterAll, FilterPending, FilterConfirmed, FilterCompleted,
		FilterCancelledByMentee, FilterCancelledByMentor,
		FilterUpcoming, FilterCancelled:
		return f, true
	}
	return "", false
}

// Matches reports whether a booking belongs to the filtered view at the
// given instant. This is the authoritative definition; the repository
// query mirrors it.
func (f BookingFilter) Matches(b *Booking, now time.Time) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterUpcoming:
		return (b.Status == BookingPending || b.Status == BookingConfirmed) && b.StartTime.After(now)
	case FilterCancelled:
		return b.Status == BookingCancelledByMentee || b.Status == BookingCancelledByMentor
	default:
		return b.Status == BookingStatus(f)
	}
}

// MatchesSearch is the case-insensitive substring match over the
// counterpart's display name and the topic, as seen from the given role.
func (b *Booking) MatchesSearch(actor Actor, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(b.Counterpart(actor).Name), q) ||
		strings.Contains(strings.ToLower(b.Topic), q)
}
