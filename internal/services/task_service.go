package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck-be/internal/models"
	"github.com/taskdeck/taskdeck-be/internal/store"
)

// TaskServiceProvider defines the interface for task services. Every
// operation takes the acting user's id; mutations are permitted only when it
// matches the task's owner.
type TaskServiceProvider interface {
	CreateTask(ctx context.Context, userID int64, title, content string) (models.Task, error)
	ListTasks(ctx context.Context, userID int64) ([]models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID int64, title, content string) (models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID int64) error
	ToggleTask(ctx context.Context, userID, taskID int64) (models.Task, error)
}

// TaskService provides business logic for per-user task management.
type TaskService struct {
	tasks store.TaskStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks store.TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

// CreateTask persists a new task for the given user. The title must be
// non-empty after trimming; content may be empty.
func (s *TaskService) CreateTask(ctx context.Context, userID int64, title, content string) (models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}

	return s.tasks.Create(ctx, models.Task{
		Title:     title,
		Content:   strings.TrimSpace(content),
		Done:      false,
		CreatedAt: time.Now(),
		UserID:    userID,
	})
}

// ListTasks returns all tasks owned by the user, newest first. The result is
// never nil, so an empty list serializes as [] rather than null.
func (s *TaskService) ListTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// UpdateTask replaces a task's title and content. The task must exist and
// belong to the acting user; existence is checked before ownership, so a
// non-owner gets ErrAccessDenied rather than ErrTaskNotFound.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID int64, title, content string) (models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}

	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return models.Task{}, err
	}

	task.Title = title
	task.Content = strings.TrimSpace(content)
	return s.tasks.Update(ctx, task)
}

// DeleteTask permanently removes a task after the same existence and
// ownership checks as UpdateTask. The task's id is never reused.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID int64) error {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, taskID)
}

// ToggleTask flips a task's done flag. Toggling twice restores the original
// value.
func (s *TaskService) ToggleTask(ctx context.Context, userID, taskID int64) (models.Task, error) {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return models.Task{}, err
	}

	task.Done = !task.Done
	return s.tasks.Update(ctx, task)
}

func (s *TaskService) ownedTask(ctx context.Context, userID, taskID int64) (models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	if task.UserID != userID {
		return models.Task{}, ErrAccessDenied
	}
	return task, nil
}
