package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"portfolio-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. Emails are stored lowercased so the
// unique constraint enforces case-insensitive uniqueness.
func (r *Repository) Create(ctx context.Context, email, passwordHash, displayName, role string, verified bool) (*User, error) {
	dbUser := &database.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Role:         role,
		IsActive:     true,
		IsVerified:   verified,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// AdminExists reports whether any admin account is registered.
func (r *Repository) AdminExists(ctx context.Context) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("role = ?", RoleAdmin).
		Count(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}

	return count > 0, nil
}

// UpdatePassword updates a user's password hash. This is the only
// write path that touches password_hash.
func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return checkAffected(result)
}

// UpdateProfile updates a user's display name.
func (r *Repository) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("display_name = ?", displayName).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return checkAffected(result)
}

// SetVerificationToken stores a new verification token hash, replacing
// any previously issued one. Only unverified users are updated.
func (r *Repository) SetVerificationToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt, sentAt time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("verification_token_hash = ?", tokenHash).
		Set("verification_expires_at = ?", expiresAt).
		Set("last_verification_sent_at = ?", sentAt).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Where("is_verified = ?", false).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to set verification token: %w", err)
	}

	return checkAffected(result)
}

// ConsumeVerificationToken marks the user verified and clears the
// stored token state. The update is conditional on the stored hash so
// a concurrent consume of the same token succeeds at most once.
func (r *Repository) ConsumeVerificationToken(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("is_verified = ?", true).
		Set("verification_token_hash = ?", nil).
		Set("verification_expires_at = ?", nil).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Where("verification_token_hash = ?", tokenHash).
		Where("is_verified = ?", false).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to consume verification token: %w", err)
	}

	return checkAffected(result)
}

// SaveLoginState persists the lockout counters and last-login
// timestamp computed by the caller.
func (r *Repository) SaveLoginState(ctx context.Context, userID uuid.UUID, failedLoginCount int, lockedUntil, lastLoginAt *time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("failed_login_count = ?", failedLoginCount).
		Set("locked_until = ?", lockedUntil).
		Set("last_login_at = ?", lastLoginAt).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to save login state: %w", err)
	}

	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:                     dbu.ID,
		Email:                  dbu.Email,
		PasswordHash:           dbu.PasswordHash,
		DisplayName:            dbu.DisplayName,
		Role:                   dbu.Role,
		IsActive:               dbu.IsActive,
		IsVerified:             dbu.IsVerified,
		VerificationTokenHash:  dbu.VerificationTokenHash,
		VerificationExpiresAt:  dbu.VerificationExpiresAt,
		LastVerificationSentAt: dbu.LastVerificationSentAt,
		FailedLoginCount:       dbu.FailedLoginCount,
		LockedUntil:            dbu.LockedUntil,
		LastLoginAt:            dbu.LastLoginAt,
		CreatedAt:              dbu.CreatedAt,
		UpdatedAt:              dbu.UpdatedAt,
	}
}
