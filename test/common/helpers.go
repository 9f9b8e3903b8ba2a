package common

import (
	"net/http"
	"testing"

	"mentorhub/pkg/client"
	"mentorhub/pkg/model"
)

func ValidApplication() map[string]any {
	return map[string]any{
		"bio":                 "Backend engineer helping juniors grow into confident production owners.",
		"expertise":           []string{"Go", "distributed systems"},
		"job_title":           "Staff Engineer",
		"company":             "Example Corp",
		"years_of_experience": 12,
		"timezone":            "UTC",
	}
}

// ProvisionApprovedMentor walks a user through the full onboarding
// path: apply, admin approval, and a recurring slot covering every day
// of the week so booking tests can pick arbitrary times.
func ProvisionApprovedMentor(t *testing.T, s *Suite, mentor *User, admin *User) *model.MentorProfile {
	t.Helper()

	mentorClient := s.MentorClientFor(mentor)

	resp, err := mentorClient.Apply(ValidApplication())
	if err != nil {
		t.Fatalf("apply request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("apply: expected 201, got %s", resp.ToString())
	}

	approveResp, err := s.MentorClientFor(admin).Approve(mentor.ID)
	if err != nil {
		t.Fatalf("approve request failed: %v", err)
	}
	if approveResp.StatusCode != http.StatusOK {
		t.Fatalf("approve: expected 200, got %s", approveResp.ToString())
	}

	availabilityClient := s.AvailabilityClientFor(mentor)
	for day := 0; day < 7; day++ {
		slotResp, err := availabilityClient.AddSlot(map[string]any{
			"is_recurring": true,
			"day_of_week":  day,
			"start_time":   "00:00",
			"end_time":     "23:59",
		})
		if err != nil {
			t.Fatalf("add slot request failed: %v", err)
		}
		if slotResp.StatusCode != http.StatusCreated {
			t.Fatalf("add slot: expected 201, got %s", slotResp.ToString())
		}
	}

	profileResp, err := mentorClient.GetByID(mentor.ID)
	if err != nil {
		t.Fatalf("get profile request failed: %v", err)
	}
	profile, err := mentorClient.DecodeProfile(profileResp)
	if err != nil {
		t.Fatal(err)
	}
	return profile
}

func RequireStatus(t *testing.T, resp *client.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %s", want, resp.ToString())
	}
}

func RequireErrorCode(t *testing.T, resp *client.Response, want string) {
	t.Helper()
	if got := client.GetErrorCode(resp); got != want {
		t.Fatalf("expected error code %q, got %q (body %s)", want, got, string(resp.Body))
	}
}
