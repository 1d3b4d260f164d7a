package task

import (
	"time"

	"github.com/google/uuid"
)

// Task is a to-do item owned by an authenticated user or an anonymous
// browser session.
type Task struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Completed      bool       `json:"completed"`
	OwnerUserID    *uuid.UUID `json:"-"`
	OwnerSessionID *string    `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Owner implements ownership.Resource.
func (t *Task) Owner() (*uuid.UUID, *string) {
	return t.OwnerUserID, t.OwnerSessionID
}
