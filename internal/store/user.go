package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskdeck/taskdeck-be/internal/models"
)

// SQLUserStore persists users in the relational database.
type SQLUserStore struct {
	db *sql.DB
}

// NewSQLUserStore creates a new SQLUserStore.
func NewSQLUserStore(db *sql.DB) *SQLUserStore {
	return &SQLUserStore{db: db}
}

const userColumns = "id, username, email, password_hash, created_at"

func (s *SQLUserStore) Create(ctx context.Context, user models.User) (models.User, error) {
	user.CreatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	user.ID, err = result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *SQLUserStore) GetByID(ctx context.Context, id int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (s *SQLUserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

func (s *SQLUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
