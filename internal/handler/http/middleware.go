package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/bookstore/internal/session"
	"github.com/vasiliy-maslov/bookstore/internal/user"
)

const sessionCookie = "session"

type Identity struct {
	UserID uuid.UUID
	Role   user.Role
	Token  string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Authenticator struct {
	sessions session.Store
	users    UserLookup
}

func NewAuthenticator(sessions session.Store, users UserLookup) *Authenticator {
	return &Authenticator{sessions: sessions, users: users}
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth resolves the session token to an active user and stores its Identity in the request context.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFrom(r)
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		userID, err := a.sessions.Get(r.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				respondWithError(w, http.StatusUnauthorized, "Session expired, please log in again")
				return
			}
			log.Error().Err(err).Msg("Failed to read session")
			respondWithError(w, http.StatusInternalServerError, "Failed to read session")
			return
		}

		u, err := a.users.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				respondWithError(w, http.StatusUnauthorized, "Session user no longer exists")
				return
			}
			log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to load session user")
			respondWithError(w, http.StatusInternalServerError, "Failed to load session user")
			return
		}
		if !u.IsActive {
			respondWithError(w, http.StatusForbidden, user.ErrInactive.Error())
			return
		}

		ctx := WithIdentity(r.Context(), Identity{UserID: u.ID, Role: u.Role, Token: token})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if id.Role != user.RoleAdmin {
			respondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger writes one zerolog line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			event := log.Info()
			if status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("HTTP request")
		}()

		next.ServeHTTP(ww, r)
	})
}
