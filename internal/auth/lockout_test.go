package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-api/internal/user"
)

func TestLockoutPolicy_Locked(t *testing.T) {
	policy := LockoutPolicy{Threshold: 5, Duration: 2 * time.Hour}
	now := time.Now()

	require.False(t, policy.Locked(&user.User{}, now))

	future := now.Add(time.Hour)
	require.True(t, policy.Locked(&user.User{LockedUntil: &future}, now))

	past := now.Add(-time.Minute)
	require.False(t, policy.Locked(&user.User{LockedUntil: &past}, now))
}

func TestLockoutPolicy_RecordFailure_CountsUpToThreshold(t *testing.T) {
	policy := LockoutPolicy{Threshold: 5, Duration: 2 * time.Hour}
	now := time.Now()

	u := &user.User{}
	for want := 1; want < 5; want++ {
		count, lockedUntil := policy.RecordFailure(u, now)
		require.Equal(t, want, count)
		require.Nil(t, lockedUntil)
		u.FailedLoginCount = count
	}

	count, lockedUntil := policy.RecordFailure(u, now)
	require.Equal(t, 5, count)
	require.NotNil(t, lockedUntil)
	require.Equal(t, now.Add(2*time.Hour), *lockedUntil)
}

func TestLockoutPolicy_RecordFailure_ElapsedLockRestartsCount(t *testing.T) {
	policy := LockoutPolicy{Threshold: 5, Duration: 2 * time.Hour}
	now := time.Now()

	expired := now.Add(-time.Minute)
	u := &user.User{FailedLoginCount: 5, LockedUntil: &expired}

	count, lockedUntil := policy.RecordFailure(u, now)
	require.Equal(t, 1, count)
	require.Nil(t, lockedUntil)
}

func TestLockoutPolicy_RecordFailure_ActiveLockKeepsCounting(t *testing.T) {
	policy := LockoutPolicy{Threshold: 5, Duration: 2 * time.Hour}
	now := time.Now()

	active := now.Add(time.Hour)
	u := &user.User{FailedLoginCount: 5, LockedUntil: &active}

	count, lockedUntil := policy.RecordFailure(u, now)
	require.Equal(t, 6, count)
	require.NotNil(t, lockedUntil)
}
