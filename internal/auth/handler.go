package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"portfolio-api/internal/httputil"
	"portfolio-api/internal/logging"
	"portfolio-api/internal/ratelimit"
	"portfolio-api/internal/user"
	"portfolio-api/internal/validate"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service     *Service
	rateLimiter *ratelimit.Limiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() *validate.Errors {
	v := &validate.Errors{}
	v.Required("name", r.Name)
	v.MaxLength("name", r.Name, 100)
	v.Required("email", r.Email)
	v.Email("email", r.Email)
	v.Required("password", r.Password)
	v.MinLength("password", r.Password, 8)
	return v
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() *validate.Errors {
	v := &validate.Errors{}
	v.Required("email", r.Email)
	v.Required("password", r.Password)
	return v
}

// ChangePasswordRequest represents the password change request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *ChangePasswordRequest) Validate() *validate.Errors {
	v := &validate.Errors{}
	v.Required("current_password", r.CurrentPassword)
	v.Required("new_password", r.NewPassword)
	v.MinLength("new_password", r.NewPassword, 8)
	return v
}

// VerifyEmailRequest represents the email verification request
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (r *VerifyEmailRequest) Validate() *validate.Errors {
	v := &validate.Errors{}
	v.Required("email", r.Email)
	v.Required("token", r.Token)
	return v
}

// ResendVerificationRequest represents the resend verification email request
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// UpdateProfileRequest represents the profile update request body
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	IsVerified  bool      `json:"is_verified"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		IsVerified:  u.IsVerified,
	}
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitByIP(w, r, "register") {
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if v := req.Validate(); v.HasErrors() {
		logger.Warn("registration failed: validation error")
		httputil.RespondValidationError(w, v.Fields())
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newUser, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already exists")
			respondError(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
			return
		}
		if errors.Is(err, ErrPasswordTooShort) {
			logger.Warn("registration failed: validation error", "error", err.Error())
			respondError(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		respondError(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID)

	respondJSON(w, RegisterResponse{
		User:    newUserResponse(newUser),
		Message: "Registration successful. Please check your email to verify your account.",
	}, http.StatusCreated)
}

// Login handles user login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitByIP(w, r, "login") {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var lockedErr *AccountLockedError
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("login failed: invalid credentials")
			respondError(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		case errors.Is(err, ErrEmailNotVerified):
			logger.Warn("login failed: email not verified")
			respondError(w, "email not verified, please check your inbox", httputil.CodeEmailNotVerified, http.StatusForbidden)
		case errors.Is(err, ErrAccountDeactivated):
			logger.Warn("login failed: account deactivated")
			respondError(w, "account is deactivated", httputil.CodeAccountDeactivated, http.StatusForbidden)
		case errors.As(err, &lockedErr):
			logger.Warn("login failed: account locked", "locked_until", lockedErr.Until)
			respondError(w, lockedErr.Error(), httputil.CodeAccountLocked, http.StatusForbidden)
		default:
			logger.Error("login failed: internal error", "error", err.Error())
			respondError(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user logged in successfully")

	respondJSON(w, session, http.StatusOK)
}

// Refresh exchanges a valid bearer token for a fresh one
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token, err := bearerToken(r)
	if err != nil {
		logger.Warn("token refresh failed: missing bearer token")
		respondError(w, "missing or invalid authorization header", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	session, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			logger.Warn("token refresh failed: token expired")
			respondError(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
			return
		}
		if errors.Is(err, ErrMalformedToken) {
			logger.Warn("token refresh failed: malformed token")
			respondError(w, "invalid token", httputil.CodeMalformedToken, http.StatusUnauthorized)
			return
		}
		logger.Error("token refresh failed: internal error", "error", err.Error())
		respondError(w, "failed to refresh token", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("token refreshed successfully")

	respondJSON(w, session, http.StatusOK)
}

// VerifyEmail handles email verification
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verify email request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if v := req.Validate(); v.HasErrors() {
		httputil.RespondValidationError(w, v.Fields())
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.service.VerifyEmail(r.Context(), req.Email, req.Token); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("email verification failed: user not found")
			respondError(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrInvalidVerificationToken) {
			logger.Warn("email verification failed: invalid or expired token")
			respondError(w, "invalid or expired verification token", httputil.CodeVerificationFailed, http.StatusBadRequest)
			return
		}
		logger.Error("email verification failed: internal error", "error", err.Error())
		respondError(w, "failed to verify email", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("email verified successfully")

	respondJSON(w, map[string]string{
		"message": "Email verified successfully. You can now login.",
	}, http.StatusOK)
}

// ResendVerification handles resending the verification email
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitByIP(w, r, "resend-verification") {
		return
	}

	var req ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid resend verification request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.service.ResendVerification(r.Context(), req.Email); err != nil {
		var tooMany *TooManyRequestsError
		switch {
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("resend verification failed: user not found")
			respondError(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
		case errors.Is(err, ErrAlreadyVerified):
			logger.Warn("resend verification failed: already verified")
			respondError(w, "email already verified", httputil.CodeAlreadyVerified, http.StatusBadRequest)
		case errors.As(err, &tooMany):
			logger.Warn("resend verification failed: cooldown active", "retry_after", tooMany.RetryAfterSeconds())
			w.Header().Set("Retry-After", strconv.Itoa(tooMany.RetryAfterSeconds()))
			respondJSON(w, map[string]any{
				"error":       "please wait before requesting another email",
				"code":        httputil.CodeTooManyRequests,
				"retry_after": tooMany.RetryAfterSeconds(),
			}, http.StatusTooManyRequests)
		default:
			logger.Error("resend verification failed: internal error", "error", err.Error())
			respondError(w, "failed to resend verification email", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("verification email resent")

	respondJSON(w, map[string]string{
		"message": "A new verification link has been sent to your email.",
	}, http.StatusOK)
}

// ChangePassword handles password change for the authenticated user
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	authedUser, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid change password request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if v := req.Validate(); v.HasErrors() {
		httputil.RespondValidationError(w, v.Fields())
		return
	}

	if err := h.service.ChangePassword(r.Context(), authedUser.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidCurrentPassword) {
			logger.Warn("password change failed: wrong current password", "user_id", authedUser.ID)
			respondError(w, "current password is incorrect", httputil.CodeInvalidCurrentPassword, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrPasswordTooShort) {
			respondError(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		}
		logger.Error("password change failed: internal error", "error", err.Error())
		respondError(w, "failed to change password", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password changed successfully", "user_id", authedUser.ID)

	respondJSON(w, map[string]string{"message": "password changed"}, http.StatusOK)
}

// CreateAdmin bootstraps the admin account (non-production only)
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create admin request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if v := req.Validate(); v.HasErrors() {
		httputil.RespondValidationError(w, v.Fields())
		return
	}

	admin, err := h.service.CreateAdmin(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrAdminBootstrapDisabled):
			logger.Warn("admin bootstrap refused: disabled")
			respondError(w, "admin bootstrap is disabled", httputil.CodeAdminDisabled, http.StatusForbidden)
		case errors.Is(err, ErrAdminExists):
			logger.Warn("admin bootstrap refused: admin exists")
			respondError(w, "an admin account already exists", httputil.CodeAdminExists, http.StatusConflict)
		case errors.Is(err, user.ErrDuplicateEmail):
			respondError(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
		default:
			logger.Error("admin bootstrap failed: internal error", "error", err.Error())
			respondError(w, "failed to create admin", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("admin account created", "user_id", admin.ID)

	respondJSON(w, RegisterResponse{
		User:    newUserResponse(admin),
		Message: "Admin account created.",
	}, http.StatusCreated)
}

// Me returns the authenticated user's profile
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	authedUser, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	respondJSON(w, newUserResponse(authedUser), http.StatusOK)
}

// UpdateProfile updates the authenticated user's display name
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	authedUser, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	v := &validate.Errors{}
	v.Required("name", req.Name)
	v.MaxLength("name", req.Name, 100)
	if v.HasErrors() {
		httputil.RespondValidationError(w, v.Fields())
		return
	}

	if err := h.service.UpdateProfile(r.Context(), authedUser.ID, req.Name); err != nil {
		logger.Error("profile update failed", "error", err.Error())
		respondError(w, "failed to update profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]string{"message": "profile updated"}, http.StatusOK)
}

// limitByIP applies the per-purpose IP rate limit and writes the 429
// response when exceeded. Limiter errors never block the request.
func (h *Handler) limitByIP(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return false
	}
	if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		respondError(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	httputil.RespondJSON(w, data, statusCode)
}

// respondError sends an error response with a machine-readable code
func respondError(w http.ResponseWriter, message string, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (behind proxy/load balancer)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip := r.RemoteAddr
	// RemoteAddr format is "IP:port", extract just the IP
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
