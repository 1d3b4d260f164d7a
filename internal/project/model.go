package project

import (
	"time"

	"github.com/google/uuid"
)

// Project is a portfolio entry. Projects are publicly readable;
// writes go through the admin surface.
type Project struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description,omitempty"`
	Tags           []string   `json:"tags"`
	RepoURL        string     `json:"repo_url,omitempty"`
	LiveURL        string     `json:"live_url,omitempty"`
	Featured       bool       `json:"featured"`
	OwnerUserID    *uuid.UUID `json:"-"`
	OwnerSessionID *string    `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Owner implements ownership.Resource.
func (p *Project) Owner() (*uuid.UUID, *string) {
	return p.OwnerUserID, p.OwnerSessionID
}
