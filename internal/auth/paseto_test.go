package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestPaseto(t *testing.T) *PasetoService {
	t.Helper()
	svc, err := NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return svc
}

func TestNewPasetoService_RejectsBadKeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("too-short"))
	require.Error(t, err)
}

func TestPaseto_RoundTrip(t *testing.T) {
	svc := newTestPaseto(t)
	userID := uuid.New()

	token, err := svc.CreateToken(userID, time.Hour)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, userID.String(), claims.UserID)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestPaseto_TamperedTokenIsMalformed(t *testing.T) {
	svc := newTestPaseto(t)

	token, err := svc.CreateToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = svc.VerifyToken(tampered)
	require.ErrorIs(t, err, ErrMalformedToken)

	_, err = svc.VerifyToken("not a token at all")
	require.ErrorIs(t, err, ErrMalformedToken)
}

func TestPaseto_ExpiredToken(t *testing.T) {
	svc := newTestPaseto(t)

	token, err := svc.CreateToken(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestPaseto_WrongKeyIsMalformed(t *testing.T) {
	svc := newTestPaseto(t)

	other, err := NewPasetoService([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	token, err := svc.CreateToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	require.ErrorIs(t, err, ErrMalformedToken)
}
