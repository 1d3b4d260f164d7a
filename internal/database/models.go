package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the persisted identity record.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	DisplayName  string    `bun:"display_name,notnull"`
	Role         string    `bun:"role,notnull,default:'user'"`
	IsActive     bool      `bun:"is_active,notnull,default:true"`

	IsVerified             bool       `bun:"is_verified,notnull,default:false"`
	VerificationTokenHash  *string    `bun:"verification_token_hash"`
	VerificationExpiresAt  *time.Time `bun:"verification_expires_at"`
	LastVerificationSentAt *time.Time `bun:"last_verification_sent_at"`

	FailedLoginCount int        `bun:"failed_login_count,notnull,default:0"`
	LockedUntil      *time.Time `bun:"locked_until"`
	LastLoginAt      *time.Time `bun:"last_login_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Task is a to-do item owned by a user or an anonymous session.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Title          string     `bun:"title,notnull"`
	Description    string     `bun:"description"`
	Completed      bool       `bun:"completed,notnull,default:false"`
	OwnerUserID    *uuid.UUID `bun:"owner_user_id,type:uuid"`
	OwnerSessionID *string    `bun:"owner_session_id"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// Project is a portfolio entry. Admin-created projects may carry no
// owner at all; they are publicly listed and admin-managed.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Title          string     `bun:"title,notnull"`
	Slug           string     `bun:"slug,notnull,unique"`
	Description    string     `bun:"description"`
	Tags           []string   `bun:"tags,array"`
	RepoURL        string     `bun:"repo_url"`
	LiveURL        string     `bun:"live_url"`
	Featured       bool       `bun:"featured,notnull,default:false"`
	OwnerUserID    *uuid.UUID `bun:"owner_user_id,type:uuid"`
	OwnerSessionID *string    `bun:"owner_session_id"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// Contact is a contact-form submission.
type Contact struct {
	bun.BaseModel `bun:"table:contacts,alias:c"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name           string     `bun:"name,notnull"`
	Email          string     `bun:"email,notnull"`
	Message        string     `bun:"message,notnull"`
	Read           bool       `bun:"read,notnull,default:false"`
	OwnerUserID    *uuid.UUID `bun:"owner_user_id,type:uuid"`
	OwnerSessionID *string    `bun:"owner_session_id"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp"`
}

// SiteSettings is the single site-wide settings row.
type SiteSettings struct {
	bun.BaseModel `bun:"table:site_settings,alias:s"`

	ID           int64     `bun:"id,pk"`
	SiteTitle    string    `bun:"site_title,notnull"`
	Tagline      string    `bun:"tagline"`
	FooterText   string    `bun:"footer_text"`
	GithubURL    string    `bun:"github_url"`
	LinkedinURL  string    `bun:"linkedin_url"`
	ContactEmail string    `bun:"contact_email"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
