package service

import (
	"context"
	"errors"
	"sync"

	"mentorhub/internal/events"
	mentorserrors "mentorhub/internal/mentors/errors"
	"mentorhub/internal/mentors/repository"
	"mentorhub/internal/mentors/validator"
	"mentorhub/pkg/config"
	apperrors "mentorhub/pkg/errors"
	"mentorhub/pkg/model"
	"mentorhub/pkg/sanitizer"
	"mentorhub/pkg/session"

	"go.mongodb.org/mongo-driver/bson"
)

// ApplyInput is the self-service mentor application. The applicant's
// identity comes from the session, never the body.
type ApplyInput struct {
	Bio               string            `json:"bio"`
	Expertise         []string          `json:"expertise"`
	JobTitle          string            `json:"job_title"`
	Company           string            `json:"company"`
	YearsOfExperience int               `json:"years_of_experience"`
	Timezone          string            `json:"timezone"`
	SocialLinks       map[string]string `json:"social_links"`
}

// UpdateProfileInput patches the caller's own profile. Empty fields are
// left untouched.
type UpdateProfileInput struct {
	Bio                 string            `json:"bio"`
	Expertise           []string          `json:"expertise"`
	JobTitle            string            `json:"job_title"`
	Company             string            `json:"company"`
	YearsOfExperience   *int              `json:"years_of_experience"`
	Timezone            string            `json:"timezone"`
	SocialLinks         map[string]string `json:"social_links"`
	IsAcceptingRequests *bool             `json:"is_accepting_requests"`
}

type BrowseInput struct {
	Search    string
	Expertise string
	Limit     int
	Offset    int64
}

type MentorService interface {
	Apply(ctx context.Context, sess *session.Session, input ApplyInput) (*model.MentorProfile, error)
	UpdateOwn(ctx context.Context, sess *session.Session, input UpdateProfileInput) (*model.MentorProfile, error)
	GetByID(ctx context.Context, sess *session.Session, mentorID string) (*model.MentorProfile, error)
	Browse(ctx context.Context, input BrowseInput) ([]*model.MentorProfile, int64, error)
	ListForModeration(ctx context.Context, sess *session.Session, status model.MentorStatus, limit int, offset int64) ([]*model.MentorProfile, int64, error)
	Approve(ctx context.Context, sess *session.Session, mentorID string) (*model.MentorProfile, error)
	Reject(ctx context.Context, sess *session.Session, mentorID, reason string) (*model.MentorProfile, error)
	GetBookableMentor(ctx context.Context, mentorID string) (*model.MentorProfile, error)
}

type mentorService struct {
	repo      repository.MentorRepository
	validator *validator.MentorValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewMentorService(
	repo repository.MentorRepository,
	v *validator.MentorValidator,
	publisher events.Publisher,
	cfg *config.Config,
) MentorService {
	return &mentorService{
		repo:      repo,
		validator: v,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *mentorService) Apply(ctx context.Context, sess *session.Session, input ApplyInput) (*model.MentorProfile, error) {
	profile := &model.MentorProfile{
		User:                model.PartyRef{ID: sess.UserID, Name: sess.Name, Email: sess.Email},
		Status:              model.MentorPending,
		IsAcceptingRequests: true,
		Bio:                 sanitizer.TrimAndNormalize(input.Bio),
		Expertise:           sanitizer.NormalizeExpertise(input.Expertise),
		JobTitle:            sanitizer.TrimAndNormalize(input.JobTitle),
		Company:             sanitizer.TrimAndNormalize(input.Company),
		YearsOfExperience:   input.YearsOfExperience,
		Timezone:            input.Timezone,
		SocialLinks:         input.SocialLinks,
	}

	if err := s.validator.Validate(profile); err != nil {
		return nil, apperrors.Validation("Invalid mentor application", map[string]any{"error": err.Error()})
	}

	existing, err := s.repo.FindByUserID(ctx, sess.UserID)
	switch {
	case err == nil:
		return s.reapply(ctx, existing, profile)
	case errors.Is(err, mentorserrors.ErrNotFound):
		// first application
	default:
		s.cfg.Log.Error("Failed to look up mentor profile", "user_id", sess.UserID, "error", err)
		return nil, apperrors.Internal("Failed to process mentor application", err)
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, mentorserrors.ErrAlreadyExists) {
			return nil, apperrors.Conflict("A mentor application already exists for this account")
		}
		s.cfg.Log.Error("Failed to create mentor profile", "user_id", sess.UserID, "error", err)
		return nil, apperrors.Internal("Failed to create mentor profile", err)
	}

	s.cfg.Log.Info("Mentor application submitted", "user_id", sess.UserID)
	s.publisher.PublishModerationEvent(ctx, events.MentorApplied, profile)

	return profile, nil
}

// reapply lets a rejected mentor submit a fresh application; anything
// else on file blocks a duplicate.
func (s *mentorService) reapply(ctx context.Context, existing, fresh *model.MentorProfile) (*model.MentorProfile, error) {
	if existing.Status != model.MentorRejected {
		return nil, apperrors.Conflict("A mentor application already exists for this account")
	}

	set := bson.M{
		"status":                string(model.MentorPending),
		"moderation_reason":     "",
		"bio":                   fresh.Bio,
		"expertise":             fresh.Expertise,
		"job_title":             fresh.JobTitle,
		"company":               fresh.Company,
		"years_of_experience":   fresh.YearsOfExperience,
		"timezone":              fresh.Timezone,
		"social_links":          fresh.SocialLinks,
		"is_accepting_requests": true,
	}
	if err := s.repo.Update(ctx, existing.User.ID, set); err != nil {
		s.cfg.Log.Error("Failed to resubmit mentor application", "user_id", existing.User.ID, "error", err)
		return nil, apperrors.Internal("Failed to resubmit mentor application", err)
	}

	fresh.ID = existing.ID
	fresh.CreatedAt = existing.CreatedAt

	s.cfg.Log.Info("Mentor application resubmitted", "user_id", existing.User.ID)
	s.publisher.PublishModerationEvent(ctx, events.MentorApplied, fresh)

	return fresh, nil
}

func (s *mentorService) UpdateOwn(ctx context.Context, sess *session.Session, input UpdateProfileInput) (*model.MentorProfile, error) {
	profile, err := s.loadByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if input.Bio != "" {
		profile.Bio = sanitizer.TrimAndNormalize(input.Bio)
		set["bio"] = profile.Bio
	}
	if input.Expertise != nil {
		profile.Expertise = sanitizer.NormalizeExpertise(input.Expertise)
		set["expertise"] = profile.Expertise
	}
	if input.JobTitle != "" {
		profile.JobTitle = sanitizer.TrimAndNormalize(input.JobTitle)
		set["job_title"] = profile.JobTitle
	}
	if input.Company != "" {
		profile.Company = sanitizer.TrimAndNormalize(input.Company)
		set["company"] = profile.Company
	}
	if input.YearsOfExperience != nil {
		profile.YearsOfExperience = *input.YearsOfExperience
		set["years_of_experience"] = profile.YearsOfExperience
	}
	if input.Timezone != "" {
		profile.Timezone = input.Timezone
		set["timezone"] = profile.Timezone
	}
	if input.SocialLinks != nil {
		profile.SocialLinks = input.SocialLinks
		set["social_links"] = profile.SocialLinks
	}
	if input.IsAcceptingRequests != nil {
		profile.IsAcceptingRequests = *input.IsAcceptingRequests
		set["is_accepting_requests"] = profile.IsAcceptingRequests
	}

	if len(set) == 0 {
		return profile, nil
	}

	if err := s.validator.Validate(profile); err != nil {
		return nil, apperrors.Validation("Invalid profile update", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, sess.UserID, set); err != nil {
		s.cfg.Log.Error("Failed to update mentor profile", "user_id", sess.UserID, "error", err)
		return nil, apperrors.Internal("Failed to update mentor profile", err)
	}

	s.cfg.Log.Info("Mentor profile updated", "user_id", sess.UserID)
	return profile, nil
}

// GetByID hides unapproved profiles from everyone except their owner
// and admins, as if they did not exist.
func (s *mentorService) GetByID(ctx context.Context, sess *session.Session, mentorID string) (*model.MentorProfile, error) {
	profile, err := s.loadByUserID(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	if !profile.IsApproved() && sess.UserID != mentorID && !sess.IsAdmin() {
		return nil, apperrors.NotFoundWithID("Mentor", mentorID)
	}

	return profile, nil
}

func (s *mentorService) Browse(ctx context.Context, input BrowseInput) ([]*model.MentorProfile, int64, error) {
	q := repository.BrowseQuery{
		Search:    sanitizer.TrimAndNormalize(input.Search),
		Expertise: sanitizer.TrimAndNormalize(input.Expertise),
		Limit:     input.Limit,
		Offset:    input.Offset,
	}

	var count int64
	var profiles []*model.MentorProfile
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountApproved(ctx, q)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count mentors", "error", errCount)
			errCount = apperrors.Internal("Failed to count mentors", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		profiles, errFind = s.repo.ListApproved(ctx, q)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list mentors", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve mentors", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return profiles, count, nil
}

func (s *mentorService) ListForModeration(ctx context.Context, sess *session.Session, status model.MentorStatus, limit int, offset int64) ([]*model.MentorProfile, int64, error) {
	if !sess.IsAdmin() {
		return nil, 0, apperrors.Forbidden("Admin role required")
	}

	profiles, err := s.repo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list mentors for moderation", "status", status, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve mentor applications", err)
	}

	count, err := s.repo.CountByStatus(ctx, status)
	if err != nil {
		s.cfg.Log.Error("Failed to count mentors for moderation", "status", status, "error", err)
		return nil, 0, apperrors.Internal("Failed to count mentor applications", err)
	}

	return profiles, count, nil
}

func (s *mentorService) Approve(ctx context.Context, sess *session.Session, mentorID string) (*model.MentorProfile, error) {
	if !sess.IsAdmin() {
		return nil, apperrors.Forbidden("Admin role required")
	}

	profile, err := s.loadByUserID(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if profile.Status == model.MentorApproved {
		return nil, apperrors.Conflict("Mentor is already approved")
	}

	set := bson.M{
		"status":            string(model.MentorApproved),
		"moderation_reason": "",
	}
	if err := s.repo.Update(ctx, mentorID, set); err != nil {
		s.cfg.Log.Error("Failed to approve mentor", "mentor_id", mentorID, "error", err)
		return nil, apperrors.Internal("Failed to approve mentor", err)
	}

	profile.Status = model.MentorApproved
	profile.ModerationReason = ""

	s.cfg.Log.Info("Mentor approved", "mentor_id", mentorID, "admin_id", sess.UserID)
	s.publisher.PublishModerationEvent(ctx, events.MentorApproved, profile)

	return profile, nil
}

// Reject works from pending and, as a revocation, from approved. The
// reason is required and stored on the profile.
func (s *mentorService) Reject(ctx context.Context, sess *session.Session, mentorID, reason string) (*model.MentorProfile, error) {
	if !sess.IsAdmin() {
		return nil, apperrors.Forbidden("Admin role required")
	}

	reason = sanitizer.TrimAndNormalize(reason)
	if reason == "" {
		return nil, apperrors.InvalidInput("A rejection reason is required")
	}

	profile, err := s.loadByUserID(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if profile.Status == model.MentorRejected {
		return nil, apperrors.Conflict("Mentor is already rejected")
	}

	set := bson.M{
		"status":            string(model.MentorRejected),
		"moderation_reason": reason,
	}
	if err := s.repo.Update(ctx, mentorID, set); err != nil {
		s.cfg.Log.Error("Failed to reject mentor", "mentor_id", mentorID, "error", err)
		return nil, apperrors.Internal("Failed to reject mentor", err)
	}

	profile.Status = model.MentorRejected
	profile.ModerationReason = reason

	s.cfg.Log.Info("Mentor rejected", "mentor_id", mentorID, "admin_id", sess.UserID)
	s.publisher.PublishModerationEvent(ctx, events.MentorRejected, profile)

	return profile, nil
}

// GetBookableMentor serves the booking flow. Unapproved mentors look
// exactly like missing ones.
func (s *mentorService) GetBookableMentor(ctx context.Context, mentorID string) (*model.MentorProfile, error) {
	profile, err := s.loadByUserID(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if !profile.IsApproved() {
		return nil, apperrors.NotFoundWithID("Mentor", mentorID)
	}
	return profile, nil
}

func (s *mentorService) loadByUserID(ctx context.Context, userID string) (*model.MentorProfile, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("Mentor ID cannot be empty")
	}

	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mentorserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Mentor", userID)
		}
		return nil, apperrors.Internal("Failed to retrieve mentor profile", err)
	}

	return profile, nil
}
