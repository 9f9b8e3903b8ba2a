package model

import "time"

// DateLayout is the calendar-date form used by specific-date slots.
const DateLayout = "2006-01-02"

// AvailabilitySlot is a mentor-defined window of time during which
// booking requests may be made. A slot is either weekly-recurring
// (DayOfWeek set, 0=Sunday) or tied to one calendar date.
type AvailabilitySlot struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	MentorID     string    `json:"mentor_id" bson:"mentor_id" validate:"required"`
	IsRecurring  bool      `json:"is_recurring" bson:"is_recurring"`
	DayOfWeek    *int      `json:"day_of_week,omitempty" bson:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`
	SpecificDate string    `json:"specific_date,omitempty" bson:"specific_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartTime    string    `json:"start_time" bson:"start_time" validate:"required,time_of_day"`
	EndTime      string    `json:"end_time" bson:"end_time" validate:"required,time_of_day"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// AvailabilitySet carries the per-mentor optimistic-concurrency version
// for bulk slot replacement. Two editors of the same mentor's
// availability cannot silently clobber each other.
type AvailabilitySet struct {
	MentorID  string    `json:"mentor_id" bson:"_id"`
	Version   int64     `json:"version" bson:"version"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Availability is the partitioned view of a mentor's slots.
type Availability struct {
	Recurring []*AvailabilitySlot `json:"recurring"`
	Specific  []*AvailabilitySlot `json:"specific"`
	Version   int64               `json:"version"`
}

// Partition splits slots into recurring and specific-date collections,
// preserving order.
func Partition(slots []*AvailabilitySlot) (recurring, specific []*AvailabilitySlot) {
	recurring = make([]*AvailabilitySlot, 0, len(slots))
	specific = make([]*AvailabilitySlot, 0, len(slots))
	for _, s := range slots {
		if s.IsRecurring {
			recurring = append(recurring, s)
		} else {
			specific = append(specific, s)
		}
	}
	return recurring, specific
}
