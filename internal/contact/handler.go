package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"portfolio-api/internal/auth"
	"portfolio-api/internal/httputil"
	"portfolio-api/internal/logging"
	"portfolio-api/internal/ownership"
	"portfolio-api/internal/ratelimit"
	"portfolio-api/internal/session"
	"portfolio-api/internal/validate"
)

// SettingsReader resolves the notification address for new submissions.
type SettingsReader interface {
	ContactEmail(ctx context.Context) (string, error)
}

// Mailer sends the owner notification for a new submission.
type Mailer interface {
	SendContactNotification(ctx context.Context, toEmail, fromName, fromEmail, message string) error
}

// Handler contains HTTP handlers for contact endpoints
type Handler struct {
	repo        *Repository
	settings    SettingsReader
	mailer      Mailer
	rateLimiter *ratelimit.Limiter
	logger      *logging.Logger
}

func NewHandler(repo *Repository, settings SettingsReader, mailer Mailer, rateLimiter *ratelimit.Limiter, logger *logging.Logger) *Handler {
	return &Handler{
		repo:        repo,
		settings:    settings,
		mailer:      mailer,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// SubmitRequest represents the contact form submission body
type SubmitRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

func (r *SubmitRequest) Validate() *validate.Errors {
	v := &validate.Errors{}
	v.Required("name", r.Name)
	v.MaxLength("name", r.Name, 100)
	v.Required("email", r.Email)
	v.Email("email", r.Email)
	v.Required("message", r.Message)
	v.MaxLength("message", r.Message, 5000)
	return v
}

// Submit accepts a public contact form submission and notifies the site
// owner by email in the background.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	limited, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip, "contact")
	if err != nil {
		logger.Error("rate limit check failed", "error", err.Error())
	} else if limited {
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if v := req.Validate(); v.HasErrors() {
		httputil.RespondValidationError(w, v.Fields())
		return
	}

	c := &Contact{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: req.Message,
	}
	if u, ok := auth.UserFromContext(r.Context()); ok {
		c.OwnerUserID = &u.ID
	} else if sid := session.Identifier(r, req.SessionID); sid != "" {
		c.OwnerSessionID = &sid
	}

	created, err := h.repo.Create(r.Context(), c)
	if err != nil {
		logger.Error("failed to create contact", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to submit message", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip, "contact"); err != nil {
		logger.Error("failed to record rate limit", "error", err.Error())
	}

	h.notifyOwner(r.Context(), created)

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// notifyOwner sends the notification email in a goroutine. Failures are
// logged, never surfaced to the submitter.
func (h *Handler) notifyOwner(ctx context.Context, c *Contact) {
	toEmail, err := h.settings.ContactEmail(ctx)
	if err != nil {
		h.logger.Error("failed to resolve notification address", "error", err.Error())
		return
	}
	if toEmail == "" {
		return
	}

	go func() {
		bgCtx := context.WithoutCancel(ctx)
		if err := h.mailer.SendContactNotification(bgCtx, toEmail, c.Name, c.Email, c.Message); err != nil {
			h.logger.Error("failed to send contact notification",
				"contact_id", c.ID,
				"error", err.Error())
		}
	}()
}

// Get returns a single submission to its owner or an admin.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid contact id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "contact not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get contact", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get contact", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	u, _ := auth.UserFromContext(r.Context())
	p := ownership.Principal{User: u, SessionID: session.Identifier(r, "")}
	if err := ownership.Authorize(p, c); err != nil {
		httputil.RespondErrorWithCode(w, "access denied", httputil.CodeAccessDenied, http.StatusForbidden)
		return
	}

	httputil.RespondJSON(w, c, http.StatusOK)
}

// List returns all submissions. Admin only; the route is gated upstream.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	unreadOnly := r.URL.Query().Get("unread") == "true"

	contacts, err := h.repo.List(r.Context(), unreadOnly)
	if err != nil {
		logger.Error("failed to list contacts", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list contacts", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, contacts, http.StatusOK)
}

// MarkRead flags a submission as read. Admin only.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid contact id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.repo.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "contact not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to mark contact read", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to mark contact read", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "contact marked read"}, http.StatusOK)
}

// Delete removes a submission. Admin only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid contact id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "contact not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete contact", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete contact", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "contact deleted"}, http.StatusOK)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
