package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"mentorhub/pkg/session"
)

type cachedResponse struct {
	statusCode  int
	contentType string
	body        []byte
	storedAt    time.Time
}

// InMemoryIdempotencyStore caches responses to mutating requests keyed
// by the client-supplied idempotency key, so a double-submitted action
// (retried button press, network retry) replays the original outcome
// instead of mutating twice.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string]cachedResponse
	ttl     time.Duration
	stopCh  chan struct{}
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries: make(map[string]cachedResponse),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.entries {
				if time.Since(entry.storedAt) > s.ttl {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	close(s.stopCh)
}

func (s *InMemoryIdempotencyStore) get(key string) (cachedResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok || time.Since(entry.storedAt) > s.ttl {
		return cachedResponse{}, false
	}
	return entry, true
}

func (s *InMemoryIdempotencyStore) put(key string, entry cachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
}

type recordingWriter struct {
	http.ResponseWriter
	statusCode int
	buf        bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	if rw.statusCode == 0 {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.WriteHeader(http.StatusOK)
	}
	rw.buf.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency replays cached responses for repeated mutating requests
// carrying the same key. GET/DELETE pass through untouched. Cache
// entries are scoped to the authenticated user; the same key from two
// users never shares a response.
func Idempotency(store *InMemoryIdempotencyStore, headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(headerName)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, ok := session.FromContext(r.Context())
			if !ok {
				// No session yet means the auth middleware will reject
				// the request anyway.
				next.ServeHTTP(w, r)
				return
			}
			key = sess.UserID + ":" + key

			if cached, ok := store.get(key); ok {
				if cached.contentType != "" {
					w.Header().Set("Content-Type", cached.contentType)
				}
				w.Header().Set("X-Idempotency-Replayed", "true")
				w.WriteHeader(cached.statusCode)
				_, _ = w.Write(cached.body)
				return
			}

			rw := &recordingWriter{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			// Only successful outcomes are worth replaying; a failed
			// attempt should be retried for real.
			if rw.statusCode >= 200 && rw.statusCode < 300 {
				store.put(key, cachedResponse{
					statusCode:  rw.statusCode,
					contentType: rw.Header().Get("Content-Type"),
					body:        rw.buf.Bytes(),
					storedAt:    time.Now(),
				})
			}
		})
	}
}
