package model

import "time"

type MentorStatus string

const (
	MentorPending  MentorStatus = "pending"
	MentorApproved MentorStatus = "approved"
	MentorRejected MentorStatus = "rejected"
)

// MentorProfile is created in pending state by self-application and
// moderated by an admin. Only approved profiles are visible to mentees
// and able to receive bookings; rejection is persisted and a rejected
// mentor may re-apply, which resets the profile to pending.
type MentorProfile struct {
	ID                  string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	User                PartyRef          `json:"user" bson:"user" validate:"required"`
	Status              MentorStatus      `json:"status" bson:"status" validate:"required,oneof=pending approved rejected"`
	IsAcceptingRequests bool              `json:"is_accepting_requests" bson:"is_accepting_requests"`
	Bio                 string            `json:"bio" bson:"bio" validate:"required,min=50,max=4000"`
	Expertise           []string          `json:"expertise" bson:"expertise" validate:"required,min=1,max=20,dive,min=2,max=60"`
	JobTitle            string            `json:"job_title" bson:"job_title" validate:"required,min=2,max=120"`
	Company             string            `json:"company,omitempty" bson:"company,omitempty" validate:"omitempty,max=120"`
	YearsOfExperience   int               `json:"years_of_experience" bson:"years_of_experience" validate:"min=0,max=80"`
	Timezone            string            `json:"timezone" bson:"timezone" validate:"required,timezone"`
	SocialLinks         map[string]string `json:"social_links,omitempty" bson:"social_links,omitempty" validate:"omitempty,dive,url"`
	ModerationReason    string            `json:"moderation_reason,omitempty" bson:"moderation_reason,omitempty" validate:"omitempty,max=1000"`
	CreatedAt           time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt           time.Time         `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// IsApproved is the visibility gate consumed by mentee-facing listings
// and by the booking flow.
func (m *MentorProfile) IsApproved() bool {
	return m.Status == MentorApproved
}

// CanReceiveBookings combines the two independent gates: admin approval
// and the mentor's own accepting-requests toggle.
func (m *MentorProfile) CanReceiveBookings() bool {
	return m.IsApproved() && m.IsAcceptingRequests
}
