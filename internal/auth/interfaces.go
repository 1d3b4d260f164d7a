package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"portfolio-api/internal/user"
)

// UserStore defines the credential-store operations the auth service
// needs. Implemented by *user.Repository.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, displayName, role string, verified bool) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	AdminExists(ctx context.Context) (bool, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string) error
	SetVerificationToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt, sentAt time.Time) error
	ConsumeVerificationToken(ctx context.Context, userID uuid.UUID, tokenHash string) error
	SaveLoginState(ctx context.Context, userID uuid.UUID, failedLoginCount int, lockedUntil, lastLoginAt *time.Time) error
}

// Mailer defines the interface for outbound email operations
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, name, token string) error
}

// TokenService defines the interface for token creation and validation.
type TokenService interface {
	CreateToken(userID uuid.UUID, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}
