package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	handler "github.com/vasiliy-maslov/bookstore/internal/handler/http"
	"github.com/vasiliy-maslov/bookstore/internal/session"
	"github.com/vasiliy-maslov/bookstore/internal/user"
)

func whoAmI(w http.ResponseWriter, r *http.Request) {
	id, ok := handler.IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(id.UserID.String() + " " + string(id.Role)))
}

func TestAuthenticator_RequireAuth(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name       string
		setup      func(req *http.Request)
		sessionErr error
		found      *user.User
		lookupErr  error
		wantCode   int
	}{
		{
			name:     "missing token",
			setup:    func(req *http.Request) {},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:       "expired session",
			setup:      func(req *http.Request) { req.Header.Set("Authorization", "Bearer stale") },
			sessionErr: session.ErrNotFound,
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "redis down",
			setup:      func(req *http.Request) { req.Header.Set("Authorization", "Bearer stale") },
			sessionErr: errors.New("dial tcp: connection refused"),
			wantCode:   http.StatusInternalServerError,
		},
		{
			name:      "deleted user",
			setup:     func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") },
			lookupErr: user.ErrNotFound,
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:     "inactive user",
			setup:    func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") },
			found:    &user.User{ID: userID, Role: user.RoleUser, IsActive: false},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "bearer token",
			setup:    func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") },
			found:    &user.User{ID: userID, Role: user.RoleAdmin, IsActive: true},
			wantCode: http.StatusOK,
		},
		{
			name:     "session cookie",
			setup:    func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "session", Value: "good"}) },
			found:    &user.User{ID: userID, Role: user.RoleAdmin, IsActive: true},
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(MockSessionStore)
			users := new(MockUserService)
			if tt.sessionErr != nil {
				sessions.On("Get", mock.Anything, "stale").Return(uuid.Nil, tt.sessionErr)
			} else {
				sessions.On("Get", mock.Anything, "good").Return(userID, nil)
			}
			if tt.found != nil {
				users.On("GetUserByID", mock.Anything, userID).Return(tt.found, nil)
			} else if tt.lookupErr != nil {
				users.On("GetUserByID", mock.Anything, userID).Return(nil, tt.lookupErr)
			}

			router := chi.NewRouter()
			router.With(handler.NewAuthenticator(sessions, users).RequireAuth).Get("/me", whoAmI)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			require.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, userID.String()+" admin", rr.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	adminOnly := func(role user.Role) *httptest.ResponseRecorder {
		router := chi.NewRouter()
		router.Use(asUser(uuid.Must(uuid.NewV4()), role))
		router.With(handler.RequireAdmin).Get("/admin", whoAmI)
		return serve(t, router, http.MethodGet, "/admin", nil)
	}

	assert.Equal(t, http.StatusForbidden, adminOnly(user.RoleUser).Code)
	assert.Equal(t, http.StatusOK, adminOnly(user.RoleAdmin).Code)

	bare := chi.NewRouter()
	bare.With(handler.RequireAdmin).Get("/admin", whoAmI)
	assert.Equal(t, http.StatusUnauthorized, serve(t, bare, http.MethodGet, "/admin", nil).Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	router := chi.NewRouter()
	router.Use(middleware.RequestID, handler.RequestLogger)
	router.Get("/ok", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("fine")) })
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) })

	serve(t, router, http.MethodGet, "/ok", nil)
	serve(t, router, http.MethodGet, "/boom", nil)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var ok, boom map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &ok))
	require.NoError(t, json.Unmarshal(lines[1], &boom))

	assert.Equal(t, "info", ok["level"])
	assert.Equal(t, "/ok", ok["path"])
	assert.EqualValues(t, http.StatusOK, ok["status"])
	assert.EqualValues(t, 4, ok["bytes"])
	assert.NotEmpty(t, ok["request_id"])

	assert.Equal(t, "error", boom["level"])
	assert.EqualValues(t, http.StatusBadGateway, boom["status"])
}
