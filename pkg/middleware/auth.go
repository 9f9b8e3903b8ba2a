package middleware

import (
	"net/http"

	httputil "mentorhub/pkg/http"
	"mentorhub/pkg/logger"
	"mentorhub/pkg/session"
)

// Authentication parses the bearer token and injects the Session into
// the request context. Requests without a valid session never reach the
// handlers.
func Authentication(secret []byte, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := session.FromAuthorizationHeader(secret, r.Header.Get("Authorization"))
			if err != nil {
				log.Warn("Rejected unauthenticated request",
					"request_id", RequestIDFrom(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				_ = httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
		})
	}
}
