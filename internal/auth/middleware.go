package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"example.com/ya-note/internal/routes"
)

const CookieName = "session"

// RevocationStore remembers session tokens that were logged out before expiry.
type RevocationStore interface {
	RevokeSession(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Sessions struct {
	tokens  *Tokens
	revoked RevocationStore
	secure  bool
}

func NewSessions(tokens *Tokens, revoked RevocationStore, secureCookie bool) *Sessions {
	return &Sessions{tokens: tokens, revoked: revoked, secure: secureCookie}
}

// Authenticate attaches the Identity of a valid session cookie to the request.
// Missing, invalid and revoked cookies leave the request anonymous.
func (s *Sessions) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(CookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := s.tokens.Parse(c.Value)
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("ignoring session cookie")
			next.ServeHTTP(w, r)
			return
		}

		revoked, err := s.revoked.IsSessionRevoked(r.Context(), id.TokenID)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("session revocation lookup failed")
			next.ServeHTTP(w, r)
			return
		}
		if revoked {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Login issues a session for the user and sets it as a cookie.
func (s *Sessions) Login(w http.ResponseWriter, userID int64, username string) (Identity, error) {
	raw, id, err := s.tokens.Issue(userID, username)
	if err != nil {
		return Identity{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    raw,
		Path:     "/",
		Expires:  id.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

// Logout revokes the requester's session, if any, and clears the cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	id, ok := FromContext(r.Context())
	if !ok {
		return nil
	}
	return s.revoked.RevokeSession(r.Context(), id.TokenID, id.ExpiresAt)
}

// RequireLogin redirects anonymous requests to the login page,
// passing the requested path as next.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			http.Redirect(w, r, routes.LoginRedirect(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
