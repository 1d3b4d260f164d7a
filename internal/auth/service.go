package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"portfolio-api/internal/logging"
	"portfolio-api/internal/user"
)

// Argon2id parameters - tuned for security vs performance balance
// Time: 3, Memory: 64MB, Threads: 4, KeyLen: 32 bytes
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// Config carries the tunable auth parameters.
type Config struct {
	TokenDuration    time.Duration
	RefreshThreshold time.Duration
	Lockout          LockoutPolicy
	VerificationTTL  time.Duration
	ResendCooldown   time.Duration
	// AllowAdminBootstrap enables the create-admin endpoint. Must be
	// false in production.
	AllowAdminBootstrap bool
}

// Service handles authentication business logic
type Service struct {
	users  UserStore
	tokens TokenService
	mailer Mailer
	logger *logging.Logger
	cfg    Config
	now    func() time.Time
}

func NewService(users UserStore, tokens TokenService, mailer Mailer, logger *logging.Logger, cfg Config) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Session is the result of a successful authentication.
type Session struct {
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresIn int64      `json:"expires_in"`
	User      *user.User `json:"user"`
}

// Register creates a new unverified account and sends the verification
// email best-effort.
func (s *Service) Register(ctx context.Context, displayName, email, password string) (*user.User, error) {
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, email, passwordHash, displayName, user.RoleUser, false)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.issueVerification(ctx, newUser); err != nil {
		// Token issuance failed; the account still exists and the user
		// can request a resend later.
		s.logger.Warn("failed to issue verification token", "email", newUser.Email, "error", err)
	}

	return newUser, nil
}

// Login authenticates a user and returns a bearer token session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !existingUser.IsActive {
		return nil, ErrAccountDeactivated
	}

	// Verification gates login before the lockout policy and never
	// touches the failed-login counter.
	if !existingUser.IsVerified {
		return nil, ErrEmailNotVerified
	}

	now := s.now()
	if s.cfg.Lockout.Locked(existingUser, now) {
		return nil, &AccountLockedError{Until: *existingUser.LockedUntil}
	}

	if !s.verifyPassword(existingUser.PasswordHash, password) {
		count, lockedUntil := s.cfg.Lockout.RecordFailure(existingUser, now)
		// Lost updates under concurrent attempts are tolerated; a
		// slightly off count does not defeat the lockout's intent.
		if err := s.users.SaveLoginState(ctx, existingUser.ID, count, lockedUntil, existingUser.LastLoginAt); err != nil {
			s.logger.Warn("failed to record failed login", "email", existingUser.Email, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.users.SaveLoginState(ctx, existingUser.ID, 0, nil, &now); err != nil {
		return nil, fmt.Errorf("failed to reset login state: %w", err)
	}
	existingUser.FailedLoginCount = 0
	existingUser.LockedUntil = nil
	existingUser.LastLoginAt = &now

	return s.newSession(existingUser)
}

// ChangePassword updates the password after checking the current one.
// Unlike login this reports a specific wrong-password error; the
// caller is already authenticated so enumeration is not a concern.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	existingUser, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !s.verifyPassword(existingUser.PasswordHash, currentPassword) {
		return ErrInvalidCurrentPassword
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// VerifyEmail consumes a verification token. Verifying an already
// verified account succeeds without consuming anything.
func (s *Service) VerifyEmail(ctx context.Context, email, token string) error {
	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if existingUser.IsVerified {
		return nil
	}

	if existingUser.VerificationTokenHash == nil || !tokenMatchesHash(token, *existingUser.VerificationTokenHash) {
		return ErrInvalidVerificationToken
	}

	if existingUser.VerificationExpiresAt == nil || s.now().After(*existingUser.VerificationExpiresAt) {
		return ErrInvalidVerificationToken
	}

	// Conditional on the stored hash so concurrent consumes of the
	// same token succeed at most once.
	if err := s.users.ConsumeVerificationToken(ctx, existingUser.ID, *existingUser.VerificationTokenHash); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("failed to consume verification token: %w", err)
	}

	return nil
}

// ResendVerification issues a fresh verification token, invalidating
// any previously issued one. A cooldown bounds how often.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if existingUser.IsVerified {
		return ErrAlreadyVerified
	}

	if existingUser.LastVerificationSentAt != nil {
		elapsed := s.now().Sub(*existingUser.LastVerificationSentAt)
		if elapsed < s.cfg.ResendCooldown {
			return &TooManyRequestsError{RetryAfter: s.cfg.ResendCooldown - elapsed}
		}
	}

	if err := s.issueVerification(ctx, existingUser); err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}

	return nil
}

// CreateAdmin bootstraps the single admin account. Refused when an
// admin already exists or bootstrap is disabled for the environment.
func (s *Service) CreateAdmin(ctx context.Context, displayName, email, password string) (*user.User, error) {
	if !s.cfg.AllowAdminBootstrap {
		return nil, ErrAdminBootstrapDisabled
	}

	exists, err := s.users.AdminExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if exists {
		return nil, ErrAdminExists
	}

	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Bootstrap admins are pre-verified; there is no inbox to confirm
	// during initial setup.
	admin, err := s.users.Create(ctx, email, passwordHash, displayName, user.RoleAdmin, true)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	return admin, nil
}

// AuthenticateToken validates a bearer token and loads the identity it
// references, enforcing the active and lockout gates.
func (s *Service) AuthenticateToken(ctx context.Context, tokenStr string) (*user.User, *TokenClaims, error) {
	claims, err := s.tokens.VerifyToken(tokenStr)
	if err != nil {
		return nil, nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil, ErrMalformedToken
	}

	existingUser, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, ErrMalformedToken
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !existingUser.IsActive {
		return nil, nil, ErrAccountDeactivated
	}

	if s.cfg.Lockout.Locked(existingUser, s.now()) {
		return nil, nil, &AccountLockedError{Until: *existingUser.LockedUntil}
	}

	return existingUser, claims, nil
}

// RefreshIfExpiring issues a replacement token when the current one is
// within the refresh threshold of expiry. Best-effort: issuance
// failures are logged and reported as no-refresh.
func (s *Service) RefreshIfExpiring(claims *TokenClaims, userID uuid.UUID) (string, bool) {
	if claims.ExpiresAt.Sub(s.now()) >= s.cfg.RefreshThreshold {
		return "", false
	}

	token, err := s.tokens.CreateToken(userID, s.cfg.TokenDuration)
	if err != nil {
		s.logger.Warn("failed to issue refreshed token", "user_id", userID, "error", err)
		return "", false
	}

	return token, true
}

// Refresh exchanges a valid bearer token for a fresh one.
func (s *Service) Refresh(ctx context.Context, tokenStr string) (*Session, error) {
	existingUser, _, err := s.AuthenticateToken(ctx, tokenStr)
	if err != nil {
		return nil, err
	}

	return s.newSession(existingUser)
}

// GetUser loads a user by ID.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	existingUser, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return existingUser, nil
}

// UpdateProfile updates the caller's display name.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string) error {
	if err := s.users.UpdateProfile(ctx, userID, displayName); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (s *Service) newSession(u *user.User) (*Session, error) {
	token, err := s.tokens.CreateToken(u.ID, s.cfg.TokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &Session{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.cfg.TokenDuration.Seconds()),
		User:      u,
	}, nil
}

// issueVerification stores a new hashed verification token and sends
// the plaintext out-of-band. The email send is detached: a failed send
// never rolls back issuance, the token stays valid for a resend.
func (s *Service) issueVerification(ctx context.Context, u *user.User) error {
	plaintext, hash, err := generateVerificationToken()
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	now := s.now()
	if err := s.users.SetVerificationToken(ctx, u.ID, hash, now.Add(s.cfg.VerificationTTL), now); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	go func() {
		// Detached context so request cancellation does not abort the send
		emailCtx := context.Background()
		if err := s.mailer.SendVerificationEmail(emailCtx, u.Email, u.DisplayName, plaintext); err != nil {
			s.logger.Warn("failed to send verification email", "email", u.Email, "error", err)
		}
	}()

	return nil
}

// hashPassword creates an argon2id hash of the password
func (s *Service) hashPassword(password string) (string, error) {
	// Generate random salt
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	// Hash password with argon2id
	hash := argon2.IDKey(
		[]byte(password),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)

	// Encode as: $argon2id$v=19$m=65536,t=3,p=4$salt$hash
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		encodedSalt,
		encodedHash,
	), nil
}

// verifyPassword checks if a password matches the stored hash
func (s *Service) verifyPassword(encodedHash, password string) bool {
	// Parse the encoded hash
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	// Parse parameters
	var version int
	var memory, time uint32
	var threads uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads)
	if err != nil {
		return false
	}
	_, err = fmt.Sscanf(parts[2], "v=%d", &version)
	if err != nil {
		return false
	}

	// Decode salt and hash
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	// Hash the input password with the same parameters
	inputHash := argon2.IDKey(
		[]byte(password),
		salt,
		time,
		memory,
		threads,
		uint32(len(decodedHash)),
	)

	// Compare hashes using constant-time comparison
	return subtle.ConstantTimeCompare(decodedHash, inputHash) == 1
}
