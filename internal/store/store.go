// Package store defines the persistence interfaces for users and tasks,
// with a SQLite-backed implementation and an in-memory one for tests and
// single-process deployments.
package store

import (
	"context"

	"github.com/taskdeck/taskdeck-be/internal/models"
)

// UserStore handles persistence for users. Identifiers are assigned by the
// store, sequentially, and are never reused.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// TaskStore handles persistence for tasks. ListByUser returns tasks newest
// first, ordered by creation time.
type TaskStore interface {
	Create(ctx context.Context, task models.Task) (models.Task, error)
	GetByID(ctx context.Context, id int64) (models.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Task, error)
	Update(ctx context.Context, task models.Task) (models.Task, error)
	Delete(ctx context.Context, id int64) error
}
