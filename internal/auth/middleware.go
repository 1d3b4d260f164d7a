package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"portfolio-api/internal/httputil"
	"portfolio-api/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	// UserContextKey holds the authenticated *user.User for the request
	UserContextKey ContextKey = "auth_user"

	// RefreshedTokenHeader carries a proactively refreshed bearer token
	// back to the client when the presented one nears expiry.
	RefreshedTokenHeader = "X-Refreshed-Token"
)

var errNoBearerToken = errors.New("no bearer token")

// Middleware handles authentication for protected routes
type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuth validates the bearer token, loads the identity and
// rejects deactivated or locked accounts. When the token's remaining
// lifetime is below the refresh threshold a replacement is issued
// best-effort via the X-Refreshed-Token response header.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			httputil.RespondErrorWithCode(w, "missing or invalid authorization header", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		authedUser, claims, err := m.service.AuthenticateToken(r.Context(), token)
		if err != nil {
			var lockedErr *AccountLockedError
			switch {
			case errors.Is(err, ErrExpiredToken):
				httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
			case errors.Is(err, ErrAccountDeactivated):
				httputil.RespondErrorWithCode(w, "account is deactivated", httputil.CodeAccountDeactivated, http.StatusForbidden)
			case errors.As(err, &lockedErr):
				httputil.RespondErrorWithCode(w, lockedErr.Error(), httputil.CodeAccountLocked, http.StatusForbidden)
			default:
				httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeMalformedToken, http.StatusUnauthorized)
			}
			return
		}

		if refreshed, ok := m.service.RefreshIfExpiring(claims, authedUser.ID); ok {
			w.Header().Set(RefreshedTokenHeader, refreshed)
		}

		ctx := context.WithValue(r.Context(), UserContextKey, authedUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the identity when a valid bearer token is
// presented and treats every validation failure as an anonymous
// request rather than an error.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		authedUser, claims, err := m.service.AuthenticateToken(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if refreshed, ok := m.service.RefreshIfExpiring(claims, authedUser.ID); ok {
			w.Header().Set(RefreshedTokenHeader, refreshed)
		}

		ctx := context.WithValue(r.Context(), UserContextKey, authedUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a route to admin users. Must be nested inside
// RequireAuth.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authedUser, ok := UserFromContext(r.Context())
		if !ok || !authedUser.IsAdmin() {
			httputil.RespondErrorWithCode(w, "admin access required", httputil.CodeAccessDenied, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext extracts the authenticated user from the request context
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*user.User)
	return u, ok
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errNoBearerToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errNoBearerToken
	}

	return parts[1], nil
}
