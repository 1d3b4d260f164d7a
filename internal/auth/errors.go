package auth

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrInvalidCurrentPassword   = errors.New("current password is incorrect")
	ErrEmailNotVerified         = errors.New("email not verified, please check your inbox")
	ErrAccountDeactivated       = errors.New("account is deactivated")
	ErrAlreadyVerified          = errors.New("email already verified")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrMalformedToken           = errors.New("malformed token")
	ErrExpiredToken             = errors.New("token has expired")
	ErrAdminExists              = errors.New("an admin account already exists")
	ErrAdminBootstrapDisabled   = errors.New("admin bootstrap is disabled in this environment")
	ErrPasswordTooShort         = errors.New("password must be at least 8 characters")
)

// AccountLockedError is returned while an account is locked after
// repeated failed logins. Until is when the lock expires.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is locked until %s", e.Until.Format(time.RFC3339))
}

// TooManyRequestsError is returned when a resend is attempted within
// the cooldown window.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e *TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry in %d seconds", e.RetryAfterSeconds())
}

// RetryAfterSeconds returns the remaining cooldown rounded up to whole
// seconds, suitable for a Retry-After header.
func (e *TooManyRequestsError) RetryAfterSeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}
