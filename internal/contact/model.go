package contact

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a contact-form submission. Anonymous submissions keep a
// session owner so the sender can look their message up again.
type Contact struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Message        string     `json:"message"`
	Read           bool       `json:"read"`
	OwnerUserID    *uuid.UUID `json:"-"`
	OwnerSessionID *string    `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Owner implements ownership.Resource.
func (c *Contact) Owner() (*uuid.UUID, *string) {
	return c.OwnerUserID, c.OwnerSessionID
}
