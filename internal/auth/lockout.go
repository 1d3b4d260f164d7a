package auth

import (
	"time"

	"portfolio-api/internal/user"
)

// LockoutPolicy locks an account for Duration once RecordFailure has
// counted Threshold consecutive failed logins. The transitions are
// pure; the caller persists the returned state.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// Locked reports whether the account is currently locked.
func (p LockoutPolicy) Locked(u *user.User, now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// RecordFailure returns the failed-login count and lock expiry that a
// failed password attempt at now produces. An elapsed lock restarts
// the count at 1 instead of accumulating across cycles.
func (p LockoutPolicy) RecordFailure(u *user.User, now time.Time) (int, *time.Time) {
	count := u.FailedLoginCount + 1
	if u.LockedUntil != nil && !u.LockedUntil.After(now) {
		count = 1
	}

	var lockedUntil *time.Time
	if count >= p.Threshold {
		t := now.Add(p.Duration)
		lockedUntil = &t
	}

	return count, lockedUntil
}
