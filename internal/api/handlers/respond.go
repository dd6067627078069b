package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/taskdeck/taskdeck-be/internal/models"
	"github.com/taskdeck/taskdeck-be/internal/services"
)

// Every endpoint answers with the same envelope shape: a success flag, an
// optional human-readable message, and at most one payload field.

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type userResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	User    models.User `json:"user"`
}

type taskResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Task    models.Task `json:"task"`
}

type taskListResponse struct {
	Success bool          `json:"success"`
	Tasks   []models.Task `json:"tasks"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, messageResponse{Success: success, Message: message})
}

// writeServiceError maps a service error onto the response envelope. Unknown
// errors are logged and reported as a generic server error so internal detail
// never leaks to the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrMissingFields):
		writeMessage(w, http.StatusBadRequest, false, "All fields are required.")
	case errors.Is(err, services.ErrPasswordTooShort):
		writeMessage(w, http.StatusBadRequest, false, "Password must be at least 6 characters.")
	case errors.Is(err, services.ErrUsernameTaken):
		writeMessage(w, http.StatusConflict, false, "Username already taken.")
	case errors.Is(err, services.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, false, "Email already registered.")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, false, "Invalid username or password.")
	case errors.Is(err, services.ErrEmptyTitle):
		writeMessage(w, http.StatusBadRequest, false, "Task title cannot be empty.")
	case errors.Is(err, services.ErrTaskNotFound):
		writeMessage(w, http.StatusNotFound, false, "Task not found.")
	case errors.Is(err, services.ErrAccessDenied):
		writeMessage(w, http.StatusForbidden, false, "Access denied.")
	default:
		log.Error().Err(err).Msg("Unexpected storage failure")
		writeMessage(w, http.StatusInternalServerError, false, "Server error.")
	}
}
