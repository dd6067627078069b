package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/taskdeck/taskdeck-be/internal/auth"
	"github.com/taskdeck/taskdeck-be/internal/services"
)

var validate = validator.New()

// AuthHandler handles registration, login, logout and the current-user
// endpoint. It is the only layer that touches session state; the user service
// itself never sees it.
type AuthHandler struct {
	service  services.UserServiceProvider
	sessions *auth.SessionStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider, sessions *auth.SessionStore) *AuthHandler {
	return &AuthHandler{service: service, sessions: sessions}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body.")
		return
	}

	payload.Username = strings.TrimSpace(payload.Username)
	payload.Email = strings.TrimSpace(payload.Email)

	if err := validate.Struct(payload); err != nil {
		writeMessage(w, http.StatusBadRequest, false, registerValidationMessage(err))
		return
	}

	if _, err := h.service.Register(r.Context(), payload.Username, payload.Email, payload.Password); err != nil {
		if errors.Is(err, services.ErrUsernameTaken) || errors.Is(err, services.ErrEmailTaken) {
			log.Warn().Str("username", payload.Username).Msg("Registration conflict")
		}
		writeServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, true, "Registration successful!")
}

// registerValidationMessage keeps the wire messages stable: any missing field
// wins over a too-short password.
func registerValidationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			if fe.Tag() == "required" {
				return "All fields are required."
			}
		}
		return "Password must be at least 6 characters."
	}
	return "All fields are required."
}

// Login verifies credentials and establishes a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body.")
		return
	}

	user, err := h.service.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
		}
		writeServiceError(w, err)
		return
	}

	session := h.sessions.Create(user.ID, user.Username)
	h.sessions.SetCookie(w, session)

	writeJSON(w, http.StatusOK, userResponse{
		Success: true,
		Message: "Welcome back, " + user.Username + "!",
		User:    user,
	})
}

// Logout destroys the caller's session, if any. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		h.sessions.Destroy(cookie.Value)
	}
	h.sessions.ClearCookie(w)

	writeMessage(w, http.StatusOK, true, "Logged out successfully.")
}

// Me returns the currently logged-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not logged in.")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", identity.UserID).Msg("Session user not found in store")
		writeMessage(w, http.StatusUnauthorized, false, "Not logged in.")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}
