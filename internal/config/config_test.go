package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testPasetoKey = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PASETO_KEY", testPasetoKey)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.True(t, cfg.Server.IsDevelopment())
	require.Equal(t, 7*24*time.Hour, cfg.Auth.TokenDuration)
	require.Equal(t, 24*time.Hour, cfg.Auth.RefreshThreshold)
	require.Equal(t, 5, cfg.Auth.LockoutThreshold)
	require.Equal(t, 2*time.Hour, cfg.Auth.LockoutDuration)
	require.Equal(t, 24*time.Hour, cfg.Auth.VerificationTTL)
	require.Equal(t, 60*time.Second, cfg.Auth.ResendCooldown)
}

func TestLoad_RejectsBadPasetoKey(t *testing.T) {
	t.Setenv("PASETO_KEY", "too-short")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsZeroLockoutThreshold(t *testing.T) {
	t.Setenv("PASETO_KEY", testPasetoKey)
	t.Setenv("LOCKOUT_THRESHOLD", "0")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_TrustedOriginsParsing(t *testing.T) {
	t.Setenv("PASETO_KEY", testPasetoKey)
	t.Setenv("TRUSTED_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.TrustedOrigins)
}

func TestConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "secret",
		DBName: "portfolio", SSLMode: "disable",
	}
	require.Equal(t,
		"host=db port=5432 user=app password=secret dbname=portfolio sslmode=disable",
		cfg.ConnectionString())

	cfg.ChannelBinding = "require"
	require.Contains(t, cfg.ConnectionString(), "channel_binding=require")
}
