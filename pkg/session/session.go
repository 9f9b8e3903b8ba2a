package session

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "mentorhub/pkg/errors"
)

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Session is the authenticated caller extracted from a bearer token.
// Mentor-ness and mentee-ness are capabilities derived from data (a
// mentor profile, bookings), not roles on the token; Roles carries
// administrative roles only.
type Session struct {
	UserID string
	Name   string
	Email  string
	Roles  []string
}

func (s *Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the session may reach moderation endpoints.
func (s *Session) IsAdmin() bool {
	return s.HasRole(RoleAdmin) || s.HasRole(RoleSuperAdmin)
}

type contextKey struct{}

func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}

// Sign issues an HS256 bearer token for the session.
func Sign(secret []byte, s *Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   s.UserID,
		"name":  s.Name,
		"email": s.Email,
		"roles": s.Roles,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse validates a bearer token and reconstructs the session.
// Any failure (bad signature, expiry, malformed claims) surfaces as
// Unauthorized; callers translate that into a login redirect.
func Parse(secret []byte, tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("Invalid or expired session")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.Unauthorized("Invalid or expired session")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, apperrors.Unauthorized("Invalid or expired session")
	}

	s := &Session{UserID: sub}
	s.Name, _ = claims["name"].(string)
	s.Email, _ = claims["email"].(string)
	if raw, ok := claims["roles"].([]any); ok {
		for _, r := range raw {
			if role, ok := r.(string); ok {
				s.Roles = append(s.Roles, role)
			}
		}
	}
	return s, nil
}

// FromAuthorizationHeader parses a "Bearer <token>" header value.
func FromAuthorizationHeader(secret []byte, header string) (*Session, error) {
	if header == "" {
		return nil, apperrors.Unauthorized("Authorization header required")
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header || tokenString == "" {
		return nil, apperrors.Unauthorized("Authorization header must be a bearer token")
	}
	return Parse(secret, tokenString)
}
