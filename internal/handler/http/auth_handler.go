package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/bookstore/internal/session"
	"github.com/vasiliy-maslov/bookstore/internal/user"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"omitempty,max=200"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=120"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type AuthHandler struct {
	users      user.Service
	sessions   session.Store
	sessionTTL time.Duration
	validate   *validator.Validate
}

func NewAuthHandler(users user.Service, sessions session.Store, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		validate:   newValidator(),
	}
}

// RegisterRoutes mounts the auth endpoints; requireAuth guards the ones that need a session.
func (h *AuthHandler) RegisterRoutes(router chi.Router, requireAuth func(http.Handler) http.Handler) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)

	router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/auth/logout", h.handleLogout)
		r.Get("/auth/me", h.handleMe)
		r.Put("/auth/profile", h.handleUpdateProfile)
	})
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.users.Register(r.Context(), user.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to register user")
		return
	}

	h.startSession(w, r, created, http.StatusCreated)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	authenticated, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondWithServiceError(w, err, "Failed to log in")
		return
	}

	h.startSession(w, r, authenticated, http.StatusOK)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, u *user.User, code int) {
	token, err := h.sessions.Create(r.Context(), u.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to create session")
		respondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondWithJSON(w, code, AuthResponse{User: toUserResponse(u), Token: token})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	if err := h.sessions.Delete(r.Context(), id.Token); err != nil {
		log.Error().Err(err).Stringer("user_id", id.UserID).Msg("Failed to delete session")
		respondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	current, err := h.users.GetUserByID(r.Context(), id.UserID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get current user")
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(current))
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	id, _ := IdentityFrom(r.Context())
	updated, err := h.users.UpdateProfile(r.Context(), id.UserID, user.ProfileUpdate{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to update profile")
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(updated))
}
