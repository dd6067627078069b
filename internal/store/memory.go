package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taskdeck/taskdeck-be/internal/models"
)

// MemoryUserStore keeps users in process memory. Each store carries its own
// monotonic id counter that never decrements, so ids are unique for the
// lifetime of the process even after deletions.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  []models.User
	nextID int64
}

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{nextID: 1}
}

func (s *MemoryUserStore) Create(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.nextID
	s.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users = append(s.users, user)
	return user, nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

// MemoryTaskStore keeps tasks in process memory, guarded by a mutex so the
// store is safe under concurrent requests.
type MemoryTaskStore struct {
	mu     sync.RWMutex
	tasks  []models.Task
	nextID int64
}

// NewMemoryTaskStore creates an empty MemoryTaskStore.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{nextID: 1}
}

func (s *MemoryTaskStore) Create(_ context.Context, task models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.nextID
	s.nextID++
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	s.tasks = append(s.tasks, task)
	return task, nil
}

func (s *MemoryTaskStore) GetByID(_ context.Context, id int64) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, task := range s.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return models.Task{}, ErrNotFound
}

func (s *MemoryTaskStore) ListByUser(_ context.Context, userID int64) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []models.Task
	for _, task := range s.tasks {
		if task.UserID == userID {
			tasks = append(tasks, task)
		}
	}
	// Newest first; id breaks ties between tasks created in the same instant.
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *MemoryTaskStore) Update(_ context.Context, task models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			task.CreatedAt = s.tasks[i].CreatedAt
			task.UserID = s.tasks[i].UserID
			s.tasks[i] = task
			return task, nil
		}
	}
	return models.Task{}, ErrNotFound
}

func (s *MemoryTaskStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
