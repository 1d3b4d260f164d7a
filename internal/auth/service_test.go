package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/logging"
	"portfolio-api/internal/user"
)

type fakeUserStore struct {
	mu      sync.Mutex
	byEmail map[string]*user.User
	byID    map[uuid.UUID]*user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: make(map[string]*user.User),
		byID:    make(map[uuid.UUID]*user.User),
	}
}

func (f *fakeUserStore) Create(ctx context.Context, email, passwordHash, displayName, role string, verified bool) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := f.byEmail[key]; exists {
		return nil, user.ErrDuplicateEmail
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        key,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Role:         role,
		IsActive:     true,
		IsVerified:   verified,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.byEmail[key] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) AdminExists(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.Role == user.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.DisplayName = displayName
	return nil
}

func (f *fakeUserStore) SetVerificationToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok || u.IsVerified {
		return user.ErrNotFound
	}
	u.VerificationTokenHash = &tokenHash
	u.VerificationExpiresAt = &expiresAt
	u.LastVerificationSentAt = &sentAt
	return nil
}

func (f *fakeUserStore) ConsumeVerificationToken(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok || u.IsVerified || u.VerificationTokenHash == nil || *u.VerificationTokenHash != tokenHash {
		return user.ErrNotFound
	}
	u.IsVerified = true
	u.VerificationTokenHash = nil
	u.VerificationExpiresAt = nil
	u.LastVerificationSentAt = nil
	return nil
}

func (f *fakeUserStore) SaveLoginState(ctx context.Context, userID uuid.UUID, failedLoginCount int, lockedUntil, lastLoginAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.FailedLoginCount = failedLoginCount
	u.LockedUntil = lockedUntil
	u.LastLoginAt = lastLoginAt
	return nil
}

type fakeMailer struct {
	sent chan string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan string, 8)}
}

func (f *fakeMailer) SendVerificationEmail(ctx context.Context, toEmail, name, token string) error {
	f.sent <- token
	return nil
}

func (f *fakeMailer) lastToken(t *testing.T) string {
	t.Helper()
	select {
	case token := <-f.sent:
		return token
	case <-time.After(2 * time.Second):
		t.Fatal("no verification email sent")
		return ""
	}
}

// testClock lets tests move the service's notion of now.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*Service, *fakeUserStore, *fakeMailer, *testClock) {
	t.Helper()

	tokens, err := NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	store := newFakeUserStore()
	mailer := newFakeMailer()
	clock := &testClock{now: time.Now()}

	svc := NewService(store, tokens, mailer, logging.NewLogger(true), Config{
		TokenDuration:       7 * 24 * time.Hour,
		RefreshThreshold:    24 * time.Hour,
		Lockout:             LockoutPolicy{Threshold: 5, Duration: 2 * time.Hour},
		VerificationTTL:     24 * time.Hour,
		ResendCooldown:      60 * time.Second,
		AllowAdminBootstrap: true,
	})
	svc.now = clock.Now

	return svc, store, mailer, clock
}

func registerVerified(t *testing.T, svc *Service, mailer *fakeMailer, email, password string) *user.User {
	t.Helper()

	ctx := context.Background()
	u, err := svc.Register(ctx, "Test User", email, password)
	require.NoError(t, err)

	token := mailer.lastToken(t)
	require.NoError(t, svc.VerifyEmail(ctx, email, token))

	return u
}

func TestRegister_UnverifiedCannotLogin(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)
	require.False(t, u.IsVerified)
	require.Equal(t, user.RoleUser, u.Role)

	_, err = svc.Login(ctx, "ada@example.com", "password123")
	require.ErrorIs(t, err, ErrEmailNotVerified)

	token := mailer.lastToken(t)
	require.NoError(t, svc.VerifyEmail(ctx, "ada@example.com", token))

	session, err := svc.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.Equal(t, "Bearer", session.TokenType)
	require.Equal(t, u.ID, session.User.ID)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "short")
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)
	mailer.lastToken(t)

	_, err = svc.Register(ctx, "Eve", "ADA@example.com", "password456")
	require.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)
	ctx := context.Background()

	registerVerified(t, svc, mailer, "ada@example.com", "password123")

	_, err := svc.Login(ctx, "ada@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown account reports the same error as a wrong password.
	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	svc, _, mailer, clock := newTestService(t)
	ctx := context.Background()

	registerVerified(t, svc, mailer, "ada@example.com", "password123")

	// The attempt that trips the lock still reports invalid credentials.
	for i := 0; i < 5; i++ {
		_, err := svc.Login(ctx, "ada@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Correct password is refused while the lock holds.
	_, err := svc.Login(ctx, "ada@example.com", "password123")
	var lockedErr *AccountLockedError
	require.ErrorAs(t, err, &lockedErr)
	require.True(t, lockedErr.Until.After(clock.Now()))

	// The lock expires after its duration and login recovers.
	clock.Advance(2*time.Hour + time.Second)
	session, err := svc.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	require.Zero(t, session.User.FailedLoginCount)
	require.Nil(t, session.User.LockedUntil)
}

func TestLogin_FailureAfterElapsedLockRestartsCount(t *testing.T) {
	svc, store, mailer, clock := newTestService(t)
	ctx := context.Background()

	u := registerVerified(t, svc, mailer, "ada@example.com", "password123")

	for i := 0; i < 5; i++ {
		_, err := svc.Login(ctx, "ada@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	clock.Advance(2*time.Hour + time.Second)

	// First failure after the lock elapsed starts a fresh count, it
	// does not re-lock immediately.
	_, err := svc.Login(ctx, "ada@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	stored, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.FailedLoginCount)
	require.Nil(t, stored.LockedUntil)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	svc, store, mailer, _ := newTestService(t)
	ctx := context.Background()

	u := registerVerified(t, svc, mailer, "ada@example.com", "password123")

	stored, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	stored.IsActive = false

	_, err = svc.Login(ctx, "ada@example.com", "password123")
	require.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestVerifyEmail_Idempotent(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)
	token := mailer.lastToken(t)

	require.NoError(t, svc.VerifyEmail(ctx, "ada@example.com", token))

	// Replaying the consumed token against a verified account succeeds
	// without doing anything.
	require.NoError(t, svc.VerifyEmail(ctx, "ada@example.com", token))
}

func TestVerifyEmail_WrongToken(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)
	mailer.lastToken(t)

	err = svc.VerifyEmail(ctx, "ada@example.com", "not-the-token")
	require.ErrorIs(t, err, ErrInvalidVerificationToken)

	err = svc.VerifyEmail(ctx, "nobody@example.com", "whatever")
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestVerifyEmail_ExpiredToken(t *testing.T) {
	svc, _, mailer, clock := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)
	token := mailer.lastToken(t)

	clock.Advance(24*time.Hour + time.Second)

	err = svc.VerifyEmail(ctx, "ada@example.com", token)
	require.ErrorIs(t, err, ErrInvalidVerificationToken)
}

func TestResendVerification_Cooldown(t *testing.T) {
	svc, _, mailer, clock := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)
	oldToken := mailer.lastToken(t)

	clock.Advance(10 * time.Second)

	err = svc.ResendVerification(ctx, "ada@example.com")
	var tooMany *TooManyRequestsError
	require.ErrorAs(t, err, &tooMany)
	require.Equal(t, 50, tooMany.RetryAfterSeconds())

	clock.Advance(51 * time.Second)

	require.NoError(t, svc.ResendVerification(ctx, "ada@example.com"))
	newToken := mailer.lastToken(t)
	require.NotEqual(t, oldToken, newToken)

	// The superseded token no longer verifies; the fresh one does.
	require.ErrorIs(t, svc.VerifyEmail(ctx, "ada@example.com", oldToken), ErrInvalidVerificationToken)
	require.NoError(t, svc.VerifyEmail(ctx, "ada@example.com", newToken))
}

func TestResendVerification_AlreadyVerified(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)

	registerVerified(t, svc, mailer, "ada@example.com", "password123")

	err := svc.ResendVerification(context.Background(), "ada@example.com")
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)
	ctx := context.Background()

	u := registerVerified(t, svc, mailer, "ada@example.com", "password123")

	err := svc.ChangePassword(ctx, u.ID, "wrong-password", "newpassword456")
	require.ErrorIs(t, err, ErrInvalidCurrentPassword)
}

func TestChangePassword_RotatesCredential(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)
	ctx := context.Background()

	u := registerVerified(t, svc, mailer, "ada@example.com", "password123")

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "password123", "newpassword456"))

	_, err := svc.Login(ctx, "ada@example.com", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ada@example.com", "newpassword456")
	require.NoError(t, err)
}

func TestCreateAdmin_Bootstrap(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, "Admin", "admin@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, user.RoleAdmin, admin.Role)
	require.True(t, admin.IsVerified)

	// Pre-verified admins log in without touching the mail flow.
	_, err = svc.Login(ctx, "admin@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.CreateAdmin(ctx, "Second", "other@example.com", "password123")
	require.ErrorIs(t, err, ErrAdminExists)
}

func TestCreateAdmin_DisabledOutsideDevelopment(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	svc.cfg.AllowAdminBootstrap = false

	_, err := svc.CreateAdmin(context.Background(), "Admin", "admin@example.com", "password123")
	require.ErrorIs(t, err, ErrAdminBootstrapDisabled)
}

func TestAuthenticateToken(t *testing.T) {
	svc, store, mailer, _ := newTestService(t)
	ctx := context.Background()

	u := registerVerified(t, svc, mailer, "ada@example.com", "password123")
	session, err := svc.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)

	got, claims, err := svc.AuthenticateToken(ctx, session.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, u.ID.String(), claims.UserID)

	_, _, err = svc.AuthenticateToken(ctx, "v4.local.garbage")
	require.ErrorIs(t, err, ErrMalformedToken)

	stored, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	stored.IsActive = false

	_, _, err = svc.AuthenticateToken(ctx, session.Token)
	require.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestRefreshIfExpiring(t *testing.T) {
	svc, _, mailer, clock := newTestService(t)
	ctx := context.Background()

	u := registerVerified(t, svc, mailer, "ada@example.com", "password123")
	session, err := svc.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)

	_, claims, err := svc.AuthenticateToken(ctx, session.Token)
	require.NoError(t, err)

	// Fresh token: plenty of lifetime left, no refresh.
	_, refreshed := svc.RefreshIfExpiring(claims, u.ID)
	require.False(t, refreshed)

	// Within a day of expiry a replacement is issued.
	clock.Advance(6*24*time.Hour + time.Hour)
	token, refreshed := svc.RefreshIfExpiring(claims, u.ID)
	require.True(t, refreshed)
	require.NotEmpty(t, token)
}
