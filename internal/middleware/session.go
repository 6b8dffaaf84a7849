package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parcelbox/parcel-service/internal/audit"
	apperrors "github.com/parcelbox/parcel-service/internal/errors"
	"github.com/parcelbox/parcel-service/internal/httputil"
	"github.com/parcelbox/parcel-service/internal/util"
)

type contextKey string

const SessionCookieName = "session_id"

const SessionIDContextKey contextKey = "sessionID"

// SessionStore keeps one cache entry per anonymous session.
type SessionStore interface {
	// Touch creates an empty entry with the given TTL when none exists and
	// reports whether it did. An existing entry keeps its remaining TTL.
	Touch(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
}

func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDContextKey).(string)
	return id, ok && id != ""
}

// WithSessionID stores a resolved session identifier in ctx.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDContextKey, sessionID)
}

type SessionMiddleware struct {
	store        SessionStore
	ttl          time.Duration
	secureCookie bool
	newID        func() (string, error)
}

func NewSessionMiddleware(store SessionStore, ttl time.Duration, secureCookie bool) *SessionMiddleware {
	return &SessionMiddleware{
		store:        store,
		ttl:          ttl,
		secureCookie: secureCookie,
		newID:        util.GenerateToken,
	}
}

// Handler resolves the caller's session before the request reaches a
// handler. A missing cookie gets a fresh identifier whose Set-Cookie header is
// written before next runs, so it is part of whatever response next produces.
// A cookie whose cache entry expired keeps its value and gets a new entry.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, issued := "", false
		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		} else {
			id, err := m.newID()
			if err != nil {
				log.Error().Err(err).Msg("session middleware: failed to generate session id")
				httputil.WriteError(w, apperrors.Internal("Failed to create session"))
				return
			}
			sessionID, issued = id, true
		}

		created, err := m.store.Touch(r.Context(), sessionID, m.ttl)
		if err != nil {
			log.Error().Err(err).Msg("session middleware: cache error")
			httputil.WriteError(w, apperrors.CacheUnavailable(err))
			return
		}

		if issued {
			setSessionCookie(w, sessionID, m.secureCookie)
		}

		if created {
			eventType := audit.EventSessionCreate
			if !issued {
				eventType = audit.EventSessionRecreate
			}
			audit.LogFromRequest(r, audit.Event{
				Type:      eventType,
				SessionID: sessionID,
			})
		}

		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
	})
}

// setSessionCookie issues a browser-session cookie: no Max-Age or Expires.
func setSessionCookie(w http.ResponseWriter, sessionID string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
