// internal/httpserver/session.go
//
// Anonymous player sessions.
// Each browser gets a session ID (UUID) wrapped in an HS256 JWT:
//   - carried in a cookie, or in "Authorization: Bearer <token>" for API clients;
//   - only POST /round/new registers a session, and only when the caller has
//     no live one; every other route treats a missing, invalid or forgotten
//     session as "no round" and allocates nothing;
//   - the token is echoed in the X-Session-Token header whenever it is issued.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/salt-detective/internal/game"
)

const sessionHeader = "X-Session-Token"

// ctxSessionKey is the context key type for the session ID.
type ctxSessionKey struct{}

// sessionID returns the session attached by withSession, or "" if the
// caller has none.
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(ctxSessionKey{}).(string)
	return id
}

func withSessionID(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, id))
}

// withSession attaches the caller's live session, if any. It never creates one.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := s.bearerOrCookie(r); tok != "" {
			if sid, err := s.parseToken(tok); err == nil && s.known(r.Context(), sid) {
				r = withSessionID(r, sid)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// known reports whether the store still holds sid.
func (s *Server) known(ctx context.Context, sid string) bool {
	return s.store.Update(ctx, sid, func(*game.Engine) error { return nil }) == nil
}

// issueSession registers a new session and hands its token to the client.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request) (string, error) {
	id := uuid.NewString()
	if _, err := s.store.Create(r.Context(), id); err != nil {
		return "", err
	}
	tok, exp, err := s.signToken(id)
	if err != nil {
		_ = s.store.Delete(r.Context(), id)
		return "", err
	}
	s.setSessionCookie(w, tok, exp)
	w.Header().Set(sessionHeader, tok)
	log.Debug().Str("session", id).Msg("session issued")
	return id, nil
}

// signToken creates an HS256 JWT for sid valid for the configured TTL.
func (s *Server) signToken(sid string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.cfg.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.SessionSecret))
	return ss, exp, err
}

// parseToken verifies tok and returns its session ID.
func (s *Server) parseToken(tok string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SessionSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !t.Valid {
		return "", errors.New("invalid token")
	}
	sid, _ := claims["sid"].(string)
	if _, err := uuid.Parse(sid); err != nil {
		return "", fmt.Errorf("bad sid claim: %w", err)
	}
	return sid, nil
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := s.cfg.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third‑party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or session cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}
