package tasksvc

import (
	"context"
	"errors"
	"time"
)

type Task struct {
	ID          uint64    `json:"id" gorm:"primaryKey"`
	UserID      uint64    `json:"userId" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Reserved columns for planned features. Nothing in the services reads
	// or writes them; they exist so enabling the features later is not a
	// schema migration.
	Priority          *string    `json:"priority,omitempty"`
	Tags              *string    `json:"tags,omitempty"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	RecurrencePattern *string    `json:"recurrencePattern,omitempty"`
}

// TaskRepository scopes every lookup, update, and delete by the combined
// (id, user_id) predicate. A task that belongs to another user is
// indistinguishable from one that does not exist: both are ErrTaskNotFound.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindAll(ctx context.Context, userID uint64) ([]Task, error)
	Find(ctx context.Context, userID, taskID uint64) (Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, userID, taskID uint64) error
}

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTaskNotFound    = errors.New("task not found")
)
