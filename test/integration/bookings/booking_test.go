package integrationtests

import (
	"net/http"
	"testing"
	"time"

	"mentorhub/pkg/model"
	"mentorhub/test/common"
)

func TestBookingLifecycle(t *testing.T) {
	suite := common.NewSuite(t)
	suite.WaitForHealthy(t)

	admin := suite.NewAdmin(t, "Moderator")
	mentor := suite.NewUser(t, "Alice Mentor")
	mentee := suite.NewUser(t, "Bob Mentee")

	common.ProvisionApprovedMentor(t, suite, mentor, admin)

	menteeBookings := suite.BookingClientFor(mentee)
	mentorBookings := suite.BookingClientFor(mentor)

	start := nextWindow()
	end := start.Add(time.Hour)

	resp, err := menteeBookings.Request(bookingBody(mentor.ID, start, end, "Career growth chat"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	common.RequireStatus(t, resp, http.StatusCreated)

	booking, err := menteeBookings.DecodeBooking(resp)
	if err != nil {
		t.Fatal(err)
	}
	if booking.Status != model.BookingPending {
		t.Fatalf("new booking should be pending, got %s", booking.Status)
	}
	if booking.Version != 1 {
		t.Fatalf("new booking should be version 1, got %d", booking.Version)
	}
	if booking.Mentor.ID != mentor.ID || booking.Mentee.ID != mentee.ID {
		t.Fatalf("participants resolved incorrectly: %+v", booking)
	}

	t.Run("overlap is rejected", func(t *testing.T) {
		overlapResp, err := menteeBookings.Request(bookingBody(mentor.ID, start.Add(30*time.Minute), end.Add(30*time.Minute), "Overlapping"))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		common.RequireStatus(t, overlapResp, http.StatusConflict)
		common.RequireErrorCode(t, overlapResp, "CONFLICT")
	})

	t.Run("mentee cannot confirm", func(t *testing.T) {
		confirmResp, err := menteeBookings.Confirm(booking.ID, booking.Version)
		if err != nil {
			t.Fatalf("confirm failed: %v", err)
		}
		common.RequireStatus(t, confirmResp, http.StatusConflict)
	})

	t.Run("stranger cannot read", func(t *testing.T) {
		stranger := suite.NewUser(t, "Carol Stranger")
		getResp, err := suite.BookingClientFor(stranger).GetByID(booking.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		common.RequireStatus(t, getResp, http.StatusForbidden)
	})

	t.Run("mentor confirms", func(t *testing.T) {
		confirmResp, err := mentorBookings.Confirm(booking.ID, booking.Version)
		if err != nil {
			t.Fatalf("confirm failed: %v", err)
		}
		common.RequireStatus(t, confirmResp, http.StatusOK)

		confirmed, err := mentorBookings.DecodeBooking(confirmResp)
		if err != nil {
			t.Fatal(err)
		}
		if confirmed.Status != model.BookingConfirmed {
			t.Fatalf("expected confirmed, got %s", confirmed.Status)
		}
		if confirmed.Version != booking.Version+1 {
			t.Fatalf("expected version bump to %d, got %d", booking.Version+1, confirmed.Version)
		}
		booking = confirmed
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		staleResp, err := mentorBookings.AddMeetingLink(booking.ID, booking.Version-1, "https://meet.example.com/room")
		if err != nil {
			t.Fatalf("meeting link failed: %v", err)
		}
		common.RequireStatus(t, staleResp, http.StatusConflict)
		common.RequireErrorCode(t, staleResp, "CONFLICT")
	})

	t.Run("meeting link attaches", func(t *testing.T) {
		linkResp, err := mentorBookings.AddMeetingLink(booking.ID, booking.Version, "https://meet.example.com/room")
		if err != nil {
			t.Fatalf("meeting link failed: %v", err)
		}
		common.RequireStatus(t, linkResp, http.StatusOK)

		updated, err := mentorBookings.DecodeBooking(linkResp)
		if err != nil {
			t.Fatal(err)
		}
		if updated.MeetingLink != "https://meet.example.com/room" {
			t.Fatalf("meeting link not stored: %q", updated.MeetingLink)
		}
		booking = updated
	})

	t.Run("feedback requires completion", func(t *testing.T) {
		fbResp, err := menteeBookings.AddFeedback(booking.ID, booking.Version, 5, "Great session")
		if err != nil {
			t.Fatalf("feedback failed: %v", err)
		}
		common.RequireStatus(t, fbResp, http.StatusConflict)
	})

	t.Run("mentee cancels confirmed", func(t *testing.T) {
		cancelResp, err := menteeBookings.Cancel(booking.ID, booking.Version, "schedule clash")
		if err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		common.RequireStatus(t, cancelResp, http.StatusOK)

		cancelled, err := menteeBookings.DecodeBooking(cancelResp)
		if err != nil {
			t.Fatal(err)
		}
		if cancelled.Status != model.BookingCancelledByMentee {
			t.Fatalf("expected cancelled_by_mentee, got %s", cancelled.Status)
		}
	})

	t.Run("list shows the booking for both sides", func(t *testing.T) {
		menteeList, err := menteeBookings.List("mentee", "cancelled", "", 20, 0)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		common.RequireStatus(t, menteeList, http.StatusOK)
		items, meta, err := menteeBookings.DecodeBookings(menteeList)
		if err != nil {
			t.Fatal(err)
		}
		if meta.TotalCount < 1 || !containsBooking(items, booking.ID) {
			t.Fatalf("mentee list missing booking %s", booking.ID)
		}

		mentorList, err := mentorBookings.List("mentor", "cancelled", "", 20, 0)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		common.RequireStatus(t, mentorList, http.StatusOK)
		items, _, err = mentorBookings.DecodeBookings(mentorList)
		if err != nil {
			t.Fatal(err)
		}
		if !containsBooking(items, booking.ID) {
			t.Fatalf("mentor list missing booking %s", booking.ID)
		}
	})
}

func TestBookingRejectedOutsideAvailability(t *testing.T) {
	suite := common.NewSuite(t)

	admin := suite.NewAdmin(t, "Moderator")
	mentor := suite.NewUser(t, "Dana NoSlots")

	mentorClient := suite.MentorClientFor(mentor)
	resp, err := mentorClient.Apply(common.ValidApplication())
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	common.RequireStatus(t, resp, http.StatusCreated)

	approveResp, err := suite.MentorClientFor(admin).Approve(mentor.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	common.RequireStatus(t, approveResp, http.StatusOK)

	mentee := suite.NewUser(t, "Eve Mentee")
	start := nextWindow()
	bookResp, err := suite.BookingClientFor(mentee).Request(bookingBody(mentor.ID, start, start.Add(time.Hour), "No slots"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	common.RequireStatus(t, bookResp, http.StatusUnprocessableEntity)
	common.RequireErrorCode(t, bookResp, "VALIDATION_ERROR")
}

func TestBookingIdempotentCreate(t *testing.T) {
	suite := common.NewSuite(t)

	admin := suite.NewAdmin(t, "Moderator")
	mentor := suite.NewUser(t, "Frank Mentor")
	mentee := suite.NewUser(t, "Grace Mentee")
	common.ProvisionApprovedMentor(t, suite, mentor, admin)

	bookings := suite.BookingClientFor(mentee)
	start := nextWindow()
	body := bookingBody(mentor.ID, start, start.Add(time.Hour), "Idempotent request")
	key := mentee.ID + "-first-booking"

	first, err := bookings.RequestWithIdempotencyKey(body, key)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	common.RequireStatus(t, first, http.StatusCreated)

	second, err := bookings.RequestWithIdempotencyKey(body, key)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	common.RequireStatus(t, second, http.StatusCreated)
	if second.Header.Get("X-Idempotency-Replayed") != "true" {
		t.Fatal("second request should be a replay")
	}

	a, err := bookings.DecodeBooking(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := bookings.DecodeBooking(second)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != b.ID {
		t.Fatalf("replay returned a different booking: %s vs %s", a.ID, b.ID)
	}
}

// nextWindow returns a bookable one hour window tomorrow, away from
// midnight so the whole window stays on one calendar day.
func nextWindow() time.Time {
	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 10, 0, 0, 0, time.UTC)
}

func bookingBody(mentorID string, start, end time.Time, topic string) map[string]any {
	return map[string]any{
		"mentor_id":  mentorID,
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
		"topic":      topic,
	}
}

func containsBooking(items []*model.Booking, id string) bool {
	for _, b := range items {
		if b.ID == id {
			return true
		}
	}
	return false
}
