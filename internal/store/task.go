package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskdeck/taskdeck-be/internal/models"
)

// SQLTaskStore persists tasks in the relational database.
type SQLTaskStore struct {
	db *sql.DB
}

// NewSQLTaskStore creates a new SQLTaskStore.
func NewSQLTaskStore(db *sql.DB) *SQLTaskStore {
	return &SQLTaskStore{db: db}
}

const taskColumns = "id, title, content, done, created_at, user_id"

func (s *SQLTaskStore) Create(ctx context.Context, task models.Task) (models.Task, error) {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks (title, content, done, created_at, user_id) VALUES (?, ?, ?, ?, ?)",
		task.Title, task.Content, task.Done, task.CreatedAt, task.UserID,
	)
	if err != nil {
		return models.Task{}, err
	}
	task.ID, err = result.LastInsertId()
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *SQLTaskStore) GetByID(ctx context.Context, id int64) (models.Task, error) {
	var task models.Task
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	err := row.Scan(&task.ID, &task.Title, &task.Content, &task.Done, &task.CreatedAt, &task.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// ListByUser returns all tasks owned by the user, newest first. Ties on the
// creation timestamp fall back to id order so the result is deterministic.
func (s *SQLTaskStore) ListByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Content, &task.Done, &task.CreatedAt, &task.UserID); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *SQLTaskStore) Update(ctx context.Context, task models.Task) (models.Task, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, content = ?, done = ? WHERE id = ?",
		task.Title, task.Content, task.Done, task.ID,
	)
	if err != nil {
		return models.Task{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, ErrNotFound
	}
	return task, nil
}

func (s *SQLTaskStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
