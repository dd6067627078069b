package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taskdeck/taskdeck-be/internal/models"
	"github.com/taskdeck/taskdeck-be/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, email, password string) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
}

// UserService provides business logic for registration and login.
type UserService struct {
	users store.UserStore
}

// NewUserService creates a new UserService.
func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

// Register validates the fields, checks the unique constraints on username
// and email, and persists a new user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return models.User{}, ErrMissingFields
	}
	if len(password) < minPasswordLength {
		return models.User{}, ErrPasswordTooShort
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return models.User{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, fmt.Errorf("checking username: %w", err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, fmt.Errorf("checking email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		return models.User{}, err
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Both an unknown username and a
// wrong password yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}
