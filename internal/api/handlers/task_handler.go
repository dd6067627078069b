package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskdeck/taskdeck-be/internal/auth"
	"github.com/taskdeck/taskdeck-be/internal/services"
)

// TaskHandler handles HTTP requests for the per-user task CRUD. All routes
// sit behind the session middleware; the resolved identity is read from the
// request context and passed to the service explicitly.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// TaskPayload defines the structure for create and update requests.
type TaskPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// List returns all tasks of the logged-in user, newest first.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not logged in.")
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskListResponse{Success: true, Tasks: tasks})
}

// Create adds a new task for the logged-in user.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not logged in.")
		return
	}

	var payload TaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body.")
		return
	}

	task, err := h.service.CreateTask(r.Context(), identity.UserID, payload.Title, payload.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, taskResponse{Success: true, Message: "Task created!", Task: task})
}

// Update replaces a task's title and content.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not logged in.")
		return
	}

	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	var payload TaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body.")
		return
	}

	task, err := h.service.UpdateTask(r.Context(), identity.UserID, taskID, payload.Title, payload.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskResponse{Success: true, Message: "Task updated!", Task: task})
}

// Delete permanently removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not logged in.")
		return
	}

	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), identity.UserID, taskID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, true, "Task deleted.")
}

// Toggle flips a task's done flag.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not logged in.")
		return
	}

	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.service.ToggleTask(r.Context(), identity.UserID, taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	message := "Task marked as not done."
	if task.Done {
		message = "Task marked as done."
	}
	writeJSON(w, http.StatusOK, taskResponse{Success: true, Message: message, Task: task})
}

// taskIDParam parses the {id} route parameter. A non-numeric id behaves like
// a missing task.
func taskIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	taskID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusNotFound, false, "Task not found.")
		return 0, false
	}
	return taskID, true
}
