package service

import (
	"context"
	"testing"
	"time"

	bookingserrors "mentorhub/internal/bookings/errors"
	"mentorhub/internal/bookings/repository"
	"mentorhub/internal/bookings/validator"
	"mentorhub/internal/events"
	"mentorhub/pkg/config"
	mongotx "mentorhub/pkg/db/mongo"
	apperrors "mentorhub/pkg/errors"
	"mentorhub/pkg/logger"
	"mentorhub/pkg/model"
	"mentorhub/pkg/session"

	"go.mongodb.org/mongo-driver/bson"
)

type mockBookingRepo struct {
	createFn           func(ctx context.Context, booking *model.Booking) error
	findByIDFn         func(ctx context.Context, id string) (*model.Booking, error)
	listFn             func(ctx context.Context, q repository.ListQuery) ([]*model.Booking, error)
	countFn            func(ctx context.Context, q repository.ListQuery) (int64, error)
	hasActiveOverlapFn func(ctx context.Context, mentorID string, start, end time.Time) (bool, error)
	updateVersionedFn  func(ctx context.Context, id string, version int64, set bson.M) error
	completeElapsedFn  func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return m.createFn(ctx, booking)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockBookingRepo) List(ctx context.Context, q repository.ListQuery) ([]*model.Booking, error) {
	return m.listFn(ctx, q)
}

func (m *mockBookingRepo) Count(ctx context.Context, q repository.ListQuery) (int64, error) {
	return m.countFn(ctx, q)
}

func (m *mockBookingRepo) HasActiveOverlap(ctx context.Context, mentorID string, start, end time.Time) (bool, error) {
	if m.hasActiveOverlapFn == nil {
		return false, nil
	}
	return m.hasActiveOverlapFn(ctx, mentorID, start, end)
}

func (m *mockBookingRepo) UpdateVersioned(ctx context.Context, id string, version int64, set bson.M) error {
	return m.updateVersionedFn(ctx, id, version, set)
}

func (m *mockBookingRepo) CompleteElapsed(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.completeElapsedFn(ctx, cutoff)
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockDirectory struct {
	profile *model.MentorProfile
	err     error
}

func (m *mockDirectory) GetBookableMentor(ctx context.Context, mentorID string) (*model.MentorProfile, error) {
	return m.profile, m.err
}

type mockAvailability struct {
	covers bool
	err    error
}

func (m *mockAvailability) Covers(ctx context.Context, mentorID string, start, end time.Time) (bool, error) {
	return m.covers, m.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
}

func testConfig() *config.Config {
	return &config.Config{Log: testLogger()}
}

func approvedProfile() *model.MentorProfile {
	return &model.MentorProfile{
		User:                model.PartyRef{ID: "mentor-1", Name: "Ada Mentor", Email: "ada@example.com"},
		Status:              model.MentorApproved,
		IsAcceptingRequests: true,
	}
}

func menteeSession() *session.Session {
	return &session.Session{UserID: "mentee-1", Name: "Mia Mentee", Email: "mia@example.com"}
}

func newService(repo *mockBookingRepo, dir *mockDirectory, avail *mockAvailability) BookingService {
	return NewBookingService(
		repo,
		dir,
		avail,
		validator.NewBookingValidator(testLogger()),
		events.NopPublisher{},
		testConfig(),
	)
}

func futureWindow() (time.Time, time.Time) {
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Minute)
	return start, start.Add(time.Hour)
}

func validInput() CreateBookingInput {
	start, end := futureWindow()
	return CreateBookingInput{
		MentorID:  "mentor-1",
		StartTime: start,
		EndTime:   end,
		Topic:     "Career growth",
	}
}

func assertCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", wantCode)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != wantCode {
		t.Fatalf("expected code %s, got %s (%v)", wantCode, appErr.Code, err)
	}
}

func TestRequest_Success(t *testing.T) {
	repo := &mockBookingRepo{
		createFn: func(ctx context.Context, booking *model.Booking) error {
			booking.ID = "b1"
			return nil
		},
	}
	svc := newService(repo, &mockDirectory{profile: approvedProfile()}, &mockAvailability{covers: true})

	booking, err := svc.Request(context.Background(), menteeSession(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.BookingPending {
		t.Errorf("expected status pending, got %s", booking.Status)
	}
	if booking.Version != 1 {
		t.Errorf("expected version 1, got %d", booking.Version)
	}
	if booking.Mentor.ID != "mentor-1" || booking.Mentee.ID != "mentee-1" {
		t.Errorf("participants not resolved: mentor=%s mentee=%s", booking.Mentor.ID, booking.Mentee.ID)
	}
	if booking.StartTime.Location() != time.UTC {
		t.Errorf("start time not stored in UTC")
	}
}

func TestRequest_Failures(t *testing.T) {
	start, end := futureWindow()

	tests := []struct {
		name     string
		input    CreateBookingInput
		profile  *model.MentorProfile
		covers   bool
		overlap  bool
		wantCode string
	}{
		{
			name:     "mentor not accepting requests",
			input:    validInput(),
			profile:  &model.MentorProfile{User: model.PartyRef{ID: "mentor-1", Name: "Ada", Email: "ada@example.com"}, Status: model.MentorApproved, IsAcceptingRequests: false},
			covers:   true,
			wantCode: apperrors.CodeConflict,
		},
		{
			name:     "outside availability",
			input:    validInput(),
			profile:  approvedProfile(),
			covers:   false,
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "end before start",
			input: CreateBookingInput{
				MentorID:  "mentor-1",
				StartTime: end,
				EndTime:   start,
				Topic:     "Career growth",
			},
			profile:  approvedProfile(),
			covers:   true,
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "start in the past",
			input: CreateBookingInput{
				MentorID:  "mentor-1",
				StartTime: time.Now().UTC().Add(-2 * time.Hour),
				EndTime:   time.Now().UTC().Add(-1 * time.Hour),
				Topic:     "Career growth",
			},
			profile:  approvedProfile(),
			covers:   true,
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "mentor double booked",
			input:    validInput(),
			profile:  approvedProfile(),
			covers:   true,
			overlap:  true,
			wantCode: apperrors.CodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBookingRepo{
				createFn: func(ctx context.Context, booking *model.Booking) error { return nil },
				hasActiveOverlapFn: func(ctx context.Context, mentorID string, s, e time.Time) (bool, error) {
					return tt.overlap, nil
				},
			}
			svc := newService(repo, &mockDirectory{profile: tt.profile}, &mockAvailability{covers: tt.covers})

			_, err := svc.Request(context.Background(), menteeSession(), tt.input)
			assertCode(t, err, tt.wantCode)
		})
	}
}

func pendingBooking() *model.Booking {
	start, end := futureWindow()
	return &model.Booking{
		ID:        "b1",
		Mentor:    model.PartyRef{ID: "mentor-1", Name: "Ada Mentor", Email: "ada@example.com"},
		Mentee:    model.PartyRef{ID: "mentee-1", Name: "Mia Mentee", Email: "mia@example.com"},
		StartTime: start,
		EndTime:   end,
		Topic:     "Career growth",
		Status:    model.BookingPending,
		Version:   3,
	}
}

func TestConfirm_ActorGating(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		wantCode string
	}{
		{"mentee cannot confirm", "mentee-1", apperrors.CodeConflict},
		{"stranger is rejected", "someone-else", apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBookingRepo{
				findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
					return pendingBooking(), nil
				},
				updateVersionedFn: func(ctx context.Context, id string, version int64, set bson.M) error {
					t.Fatal("update must not be reached")
					return nil
				},
			}
			svc := newService(repo, &mockDirectory{}, &mockAvailability{})

			_, err := svc.Confirm(context.Background(), &session.Session{UserID: tt.userID}, "b1", 3)
			assertCode(t, err, tt.wantCode)
		})
	}
}

func TestConfirm_Success(t *testing.T) {
	var gotSet bson.M
	repo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
		updateVersionedFn: func(ctx context.Context, id string, version int64, set bson.M) error {
			gotSet = set
			return nil
		},
	}
	svc := newService(repo, &mockDirectory{}, &mockAvailability{})

	booking, err := svc.Confirm(context.Background(), &session.Session{UserID: "mentor-1"}, "b1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.BookingConfirmed {
		t.Errorf("expected confirmed, got %s", booking.Status)
	}
	if booking.Version != 4 {
		t.Errorf("expected version bump to 4, got %d", booking.Version)
	}
	if gotSet["status"] != string(model.BookingConfirmed) {
		t.Errorf("unexpected update document: %v", gotSet)
	}
}

func TestConfirm_StaleVersion(t *testing.T) {
	repo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
		updateVersionedFn: func(ctx context.Context, id string, version int64, set bson.M) error {
			return bookingserrors.ErrVersionMismatch
		},
	}
	svc := newService(repo, &mockDirectory{}, &mockAvailability{})

	_, err := svc.Confirm(context.Background(), &session.Session{UserID: "mentor-1"}, "b1", 2)
	assertCode(t, err, apperrors.CodeConflict)

	appErr := apperrors.AsAppError(err)
	if appErr.Details["stale_version"] != int64(2) {
		t.Errorf("expected stale_version detail, got %v", appErr.Details)
	}
}

func TestCancel_BothSides(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		from       model.BookingStatus
		wantStatus model.BookingStatus
	}{
		{"mentee cancels pending", "mentee-1", model.BookingPending, model.BookingCancelledByMentee},
		{"mentee cancels confirmed", "mentee-1", model.BookingConfirmed, model.BookingCancelledByMentee},
		{"mentor cancels confirmed", "mentor-1", model.BookingConfirmed, model.BookingCancelledByMentor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBookingRepo{
				findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
					b := pendingBooking()
					b.Status = tt.from
					return b, nil
				},
				updateVersionedFn: func(ctx context.Context, id string, version int64, set bson.M) error {
					return nil
				},
			}
			svc := newService(repo, &mockDirectory{}, &mockAvailability{})

			booking, err := svc.Cancel(context.Background(), &session.Session{UserID: tt.userID}, "b1", 3, "schedule conflict")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if booking.Status != tt.wantStatus {
				t.Errorf("expected %s, got %s", tt.wantStatus, booking.Status)
			}
			if booking.CancelReason != "schedule conflict" {
				t.Errorf("cancel reason not kept: %q", booking.CancelReason)
			}
		})
	}
}

func TestMentorCannotCancelPending(t *testing.T) {
	repo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
		updateVersionedFn: func(ctx context.Context, id string, version int64, set bson.M) error {
			t.Fatal("update must not be reached")
			return nil
		},
	}
	svc := newService(repo, &mockDirectory{}, &mockAvailability{})

	// A pending request is declined, not cancelled, by the mentor.
	_, err := svc.Cancel(context.Background(), &session.Session{UserID: "mentor-1"}, "b1", 3, "")
	assertCode(t, err, apperrors.CodeConflict)
}

func TestAddMeetingLink(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		from     model.BookingStatus
		wantCode string
		wantLink string
	}{
		{"valid link on confirmed", "https://Meet.example.com/room/", model.BookingConfirmed, "", "https://meet.example.com/room"},
		{"rejected on pending", "https://meet.example.com/room", model.BookingPending, apperrors.CodeConflict, ""},
		{"invalid link", "javascript:alert(1)", model.BookingConfirmed, apperrors.CodeInvalidInput, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBookingRepo{
				findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
					b := pendingBooking()
					b.Status = tt.from
					return b, nil
				},
				updateVersionedFn: func(ctx context.Context, id string, version int64, set bson.M) error {
					return nil
				},
			}
			svc := newService(repo, &mockDirectory{}, &mockAvailability{})

			booking, err := svc.AddMeetingLink(context.Background(), &session.Session{UserID: "mentor-1"}, "b1", 3, tt.link)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if booking.MeetingLink != tt.wantLink {
				t.Errorf("expected link %q, got %q", tt.wantLink, booking.MeetingLink)
			}
		})
	}
}

func TestAddFeedback(t *testing.T) {
	three := 3

	tests := []struct {
		name     string
		userID   string
		from     model.BookingStatus
		existing *int
		rating   int
		wantCode string
	}{
		{"mentee rates completed", "mentee-1", model.BookingCompleted, nil, 5, ""},
		{"second feedback rejected", "mentee-1", model.BookingCompleted, &three, 4, apperrors.CodeConflict},
		{"mentor cannot leave feedback", "mentor-1", model.BookingCompleted, nil, 5, apperrors.CodeConflict},
		{"feedback before completion", "mentee-1", model.BookingConfirmed, nil, 5, apperrors.CodeConflict},
		{"rating out of range", "mentee-1", model.BookingCompleted, nil, 6, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBookingRepo{
				findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
					b := pendingBooking()
					b.Status = tt.from
					b.Rating = tt.existing
					return b, nil
				},
				updateVersionedFn: func(ctx context.Context, id string, version int64, set bson.M) error {
					return nil
				},
			}
			svc := newService(repo, &mockDirectory{}, &mockAvailability{})

			booking, err := svc.AddFeedback(context.Background(), &session.Session{UserID: tt.userID}, "b1", 3, tt.rating, "great session")
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if booking.Rating == nil || *booking.Rating != tt.rating {
				t.Errorf("rating not stored")
			}
			if booking.Status != model.BookingCompleted {
				t.Errorf("feedback must not change status, got %s", booking.Status)
			}
		})
	}
}

func TestCompleteElapsed(t *testing.T) {
	var gotCutoff time.Time
	repo := &mockBookingRepo{
		completeElapsedFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 7, nil
		},
	}
	svc := newService(repo, &mockDirectory{}, &mockAvailability{})

	count, err := svc.CompleteElapsed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Errorf("expected 7, got %d", count)
	}
	if time.Since(gotCutoff) > time.Minute {
		t.Errorf("cutoff should be about now, got %v", gotCutoff)
	}
}

func TestGetByID_Visibility(t *testing.T) {
	repo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
	}
	svc := newService(repo, &mockDirectory{}, &mockAvailability{})

	tests := []struct {
		name     string
		sess     *session.Session
		wantCode string
	}{
		{"mentor sees it", &session.Session{UserID: "mentor-1"}, ""},
		{"mentee sees it", &session.Session{UserID: "mentee-1"}, ""},
		{"admin sees it", &session.Session{UserID: "admin-1", Roles: []string{"admin"}}, ""},
		{"stranger is rejected", &session.Session{UserID: "someone-else"}, apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetByID(context.Background(), tt.sess, "b1")
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
