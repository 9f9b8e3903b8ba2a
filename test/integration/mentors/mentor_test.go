package integrationtests

import (
	"net/http"
	"testing"

	"mentorhub/pkg/model"
	"mentorhub/test/common"
)

func TestMentorModerationFlow(t *testing.T) {
	suite := common.NewSuite(t)
	suite.WaitForHealthy(t)

	admin := suite.NewAdmin(t, "Moderator")
	applicant := suite.NewUser(t, "Holly Applicant")
	visitor := suite.NewUser(t, "Ivan Visitor")

	applicantClient := suite.MentorClientFor(applicant)
	visitorClient := suite.MentorClientFor(visitor)
	adminClient := suite.MentorClientFor(admin)

	applyResp, err := applicantClient.Apply(common.ValidApplication())
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	common.RequireStatus(t, applyResp, http.StatusCreated)

	profile, err := applicantClient.DecodeProfile(applyResp)
	if err != nil {
		t.Fatal(err)
	}
	if profile.Status != model.MentorPending {
		t.Fatalf("fresh application should be pending, got %s", profile.Status)
	}

	t.Run("duplicate application conflicts", func(t *testing.T) {
		resp, err := applicantClient.Apply(common.ValidApplication())
		if err != nil {
			t.Fatalf("apply failed: %v", err)
		}
		common.RequireStatus(t, resp, http.StatusConflict)
	})

	t.Run("pending profile hidden from visitors", func(t *testing.T) {
		resp, err := visitorClient.GetByID(applicant.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		common.RequireStatus(t, resp, http.StatusNotFound)
	})

	t.Run("owner sees own pending profile", func(t *testing.T) {
		resp, err := applicantClient.GetByID(applicant.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		common.RequireStatus(t, resp, http.StatusOK)
	})

	t.Run("non admin cannot moderate", func(t *testing.T) {
		resp, err := visitorClient.Approve(applicant.ID)
		if err != nil {
			t.Fatalf("approve failed: %v", err)
		}
		common.RequireStatus(t, resp, http.StatusForbidden)
	})

	t.Run("admin sees pending queue", func(t *testing.T) {
		resp, err := adminClient.ListForModeration("pending", 50, 0)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		common.RequireStatus(t, resp, http.StatusOK)

		profiles, _, err := adminClient.DecodeProfiles(resp)
		if err != nil {
			t.Fatal(err)
		}
		if !containsProfile(profiles, applicant.ID) {
			t.Fatalf("pending queue missing applicant %s", applicant.ID)
		}
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		resp, err := adminClient.Reject(applicant.ID, "   ")
		if err != nil {
			t.Fatalf("reject failed: %v", err)
		}
		common.RequireStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("approve makes the mentor public", func(t *testing.T) {
		resp, err := adminClient.Approve(applicant.ID)
		if err != nil {
			t.Fatalf("approve failed: %v", err)
		}
		common.RequireStatus(t, resp, http.StatusOK)

		getResp, err := visitorClient.GetByID(applicant.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		common.RequireStatus(t, getResp, http.StatusOK)

		approved, err := visitorClient.DecodeProfile(getResp)
		if err != nil {
			t.Fatal(err)
		}
		if approved.Status != model.MentorApproved {
			t.Fatalf("expected approved, got %s", approved.Status)
		}
	})

	t.Run("approving twice conflicts", func(t *testing.T) {
		resp, err := adminClient.Approve(applicant.ID)
		if err != nil {
			t.Fatalf("approve failed: %v", err)
		}
		common.RequireStatus(t, resp, http.StatusConflict)
	})

	t.Run("revoked mentor disappears and may reapply", func(t *testing.T) {
		resp, err := adminClient.Reject(applicant.ID, "Profile no longer meets the bar")
		if err != nil {
			t.Fatalf("reject failed: %v", err)
		}
		common.RequireStatus(t, resp, http.StatusOK)

		getResp, err := visitorClient.GetByID(applicant.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		common.RequireStatus(t, getResp, http.StatusNotFound)

		reapplyResp, err := applicantClient.Apply(common.ValidApplication())
		if err != nil {
			t.Fatalf("reapply failed: %v", err)
		}
		common.RequireStatus(t, reapplyResp, http.StatusCreated)

		fresh, err := applicantClient.DecodeProfile(reapplyResp)
		if err != nil {
			t.Fatal(err)
		}
		if fresh.Status != model.MentorPending {
			t.Fatalf("reapplication should reset to pending, got %s", fresh.Status)
		}
		if fresh.ModerationReason != "" {
			t.Fatalf("reapplication should clear the moderation reason, got %q", fresh.ModerationReason)
		}
	})
}

func TestMentorBrowseOnlyApproved(t *testing.T) {
	suite := common.NewSuite(t)

	admin := suite.NewAdmin(t, "Moderator")
	approved := suite.NewUser(t, "Judy Approved")
	pending := suite.NewUser(t, "Karl Pending")

	common.ProvisionApprovedMentor(t, suite, approved, admin)

	pendingResp, err := suite.MentorClientFor(pending).Apply(common.ValidApplication())
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	common.RequireStatus(t, pendingResp, http.StatusCreated)

	browser := suite.MentorClientFor(suite.NewUser(t, "Lena Browser"))
	resp, err := browser.Browse("", nil, 100, 0)
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	common.RequireStatus(t, resp, http.StatusOK)

	profiles, _, err := browser.DecodeProfiles(resp)
	if err != nil {
		t.Fatal(err)
	}
	if !containsProfile(profiles, approved.ID) {
		t.Fatalf("browse missing approved mentor %s", approved.ID)
	}
	if containsProfile(profiles, pending.ID) {
		t.Fatalf("browse must not list pending mentor %s", pending.ID)
	}
}

func containsProfile(profiles []*model.MentorProfile, userID string) bool {
	for _, p := range profiles {
		if p.User.ID == userID {
			return true
		}
	}
	return false
}
