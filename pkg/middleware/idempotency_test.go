package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mentorhub/pkg/session"
)

const idempotencyHeader = "Idempotency-Key"

func newIdempotencyStore(t *testing.T) *InMemoryIdempotencyStore {
	t.Helper()
	store := NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(store.Stop)
	return store
}

func sessionRequest(method, userID, key string) *http.Request {
	r := httptest.NewRequest(method, "/api/v1/bookings", strings.NewReader("{}"))
	if key != "" {
		r.Header.Set(idempotencyHeader, key)
	}
	if userID != "" {
		sess := &session.Session{UserID: userID, Name: userID, Email: userID + "@example.com"}
		r = r.WithContext(session.WithContext(r.Context(), sess))
	}
	return r
}

func TestIdempotency_ReplaysForSameUser(t *testing.T) {
	store := newIdempotencyStore(t)

	calls := 0
	handler := Idempotency(store, idempotencyHeader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"booking-1"}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, sessionRequest(http.MethodPost, "user-1", "key-1"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, sessionRequest(http.MethodPost, "user-1", "key-1"))

	if calls != 1 {
		t.Errorf("expected 1 handler call, got %d", calls)
	}
	if second.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("second response should be marked as a replay")
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Errorf("replay must match the original response, got %d %s", second.Code, second.Body.String())
	}
}

func TestIdempotency_ScopedPerUser(t *testing.T) {
	store := newIdempotencyStore(t)

	handler := Idempotency(store, idempotencyHeader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := session.FromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"owner":"` + sess.UserID + `"}}`))
	}))

	alice := httptest.NewRecorder()
	handler.ServeHTTP(alice, sessionRequest(http.MethodPost, "alice", "shared-key"))

	bob := httptest.NewRecorder()
	handler.ServeHTTP(bob, sessionRequest(http.MethodPost, "bob", "shared-key"))

	if bob.Header().Get("X-Idempotency-Replayed") == "true" {
		t.Error("another user's key must not produce a replay")
	}
	if !strings.Contains(bob.Body.String(), `"owner":"bob"`) {
		t.Errorf("second user must get their own response, got %s", bob.Body.String())
	}
	if !strings.Contains(alice.Body.String(), `"owner":"alice"`) {
		t.Errorf("first user must get their own response, got %s", alice.Body.String())
	}
}

func TestIdempotency_PassThrough(t *testing.T) {
	tests := []struct {
		name   string
		method string
		userID string
		key    string
	}{
		{"no key", http.MethodPost, "user-1", ""},
		{"read request", http.MethodGet, "user-1", "key-1"},
		{"no session", http.MethodPost, "", "key-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newIdempotencyStore(t)

			calls := 0
			handler := Idempotency(store, idempotencyHeader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(http.StatusOK)
			}))

			for i := 0; i < 2; i++ {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, sessionRequest(tt.method, tt.userID, tt.key))
			}

			if calls != 2 {
				t.Errorf("expected both requests to reach the handler, got %d calls", calls)
			}
		})
	}
}

func TestIdempotency_FailuresNotCached(t *testing.T) {
	store := newIdempotencyStore(t)

	calls := 0
	handler := Idempotency(store, idempotencyHeader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"CONFLICT"}`))
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, sessionRequest(http.MethodPost, "user-1", "key-1"))
		if rec.Header().Get("X-Idempotency-Replayed") == "true" {
			t.Error("failed responses must not be replayed")
		}
	}

	if calls != 2 {
		t.Errorf("expected a real retry after a failure, got %d calls", calls)
	}
}
