package models

import "time"

// Task is a single to-do item owned by a user.
type Task struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	UserID    int64     `json:"user_id"`
}
