package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-api/internal/user"
)

func loginSession(t *testing.T, svc *Service, mailer *fakeMailer, email string) *Session {
	t.Helper()
	registerVerified(t, svc, mailer, email, "password123")
	session, err := svc.Login(context.Background(), email, "password123")
	require.NoError(t, err)
	return session
}

func TestRequireAuth_ValidToken(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)
	session := loginSession(t, svc, mailer, "ada@example.com")

	mw := NewMiddleware(svc)

	var gotUser *user.User
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("GET", "/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+session.Token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotUser)
	require.Equal(t, session.User.ID, gotUser.ID)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	mw := NewMiddleware(svc)

	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	r := httptest.NewRequest("GET", "/auth/me", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	mw := NewMiddleware(svc)

	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	r := httptest.NewRequest("GET", "/auth/me", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_RefreshesExpiringToken(t *testing.T) {
	svc, _, mailer, clock := newTestService(t)
	session := loginSession(t, svc, mailer, "ada@example.com")

	// Move into the refresh window; the token itself is still valid.
	clock.Advance(6*24*time.Hour + time.Hour)

	mw := NewMiddleware(svc)
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("GET", "/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+session.Token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get(RefreshedTokenHeader))
}

func TestOptionalAuth_AnonymousPassthrough(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	mw := NewMiddleware(svc)

	handler := mw.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := UserFromContext(r.Context())
		require.False(t, ok)
		w.WriteHeader(http.StatusOK)
	}))

	// No header at all, then a broken token; both pass through anonymous.
	for _, authHeader := range []string{"", "Bearer broken"} {
		r := httptest.NewRequest("GET", "/tasks", nil)
		if authHeader != "" {
			r.Header.Set("Authorization", authHeader)
		}
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	mw := NewMiddleware(svc)

	handler := mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	regular := &user.User{Role: user.RoleUser}
	r := httptest.NewRequest("GET", "/admin/contacts", nil)
	r = r.WithContext(context.WithValue(r.Context(), UserContextKey, regular))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)

	admin := &user.User{Role: user.RoleAdmin}
	r = httptest.NewRequest("GET", "/admin/contacts", nil)
	r = r.WithContext(context.WithValue(r.Context(), UserContextKey, admin))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}
