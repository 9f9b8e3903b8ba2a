package common

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"mentorhub/pkg/client"
	"mentorhub/pkg/session"
)

// Suite wires typed API clients against a running server. Tests using
// it are skipped unless INTEGRATION is set, so `go test ./...` stays
// green without infrastructure.
type Suite struct {
	BaseURL string
	secret  []byte
}

func NewSuite(t *testing.T) *Suite {
	t.Helper()

	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run integration tests against a live server")
	}

	baseURL := os.Getenv("TEST_SERVER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		t.Fatal("JWT_SECRET must be set to mint test tokens")
	}

	return &Suite{
		BaseURL: baseURL,
		secret:  []byte(secret),
	}
}

// User is a synthetic account for one test run. Fresh UUIDs keep runs
// independent without a database cleanup step.
type User struct {
	ID    string
	Name  string
	Email string
	Token string
}

func (s *Suite) NewUser(t *testing.T, name string, roles ...string) *User {
	t.Helper()

	id := uuid.NewString()
	sess := &session.Session{
		UserID: id,
		Name:   name,
		Email:  name + "-" + id[:8] + "@example.test",
		Roles:  roles,
	}

	token, err := session.Sign(s.secret, sess, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	return &User{
		ID:    id,
		Name:  name,
		Email: sess.Email,
		Token: token,
	}
}

func (s *Suite) NewAdmin(t *testing.T, name string) *User {
	return s.NewUser(t, name, session.RoleAdmin)
}

func (s *Suite) BookingClientFor(u *User) *client.BookingClient {
	c := client.NewBookingClient(s.BaseURL)
	c.SetToken(u.Token)
	return c
}

func (s *Suite) AvailabilityClientFor(u *User) *client.AvailabilityClient {
	c := client.NewAvailabilityClient(s.BaseURL)
	c.SetToken(u.Token)
	return c
}

func (s *Suite) MentorClientFor(u *User) *client.MentorClient {
	c := client.NewMentorClient(s.BaseURL)
	c.SetToken(u.Token)
	return c
}

func (s *Suite) WaitForHealthy(t *testing.T) {
	t.Helper()
	if err := client.NewHttpClient(s.BaseURL).WaitForHealthy(30 * time.Second); err != nil {
		t.Fatalf("server not healthy: %v", err)
	}
}
