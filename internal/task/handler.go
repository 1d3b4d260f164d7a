package task

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"portfolio-api/internal/auth"
	"portfolio-api/internal/httputil"
	"portfolio-api/internal/logging"
	"portfolio-api/internal/ownership"
	"portfolio-api/internal/session"
	"portfolio-api/internal/validate"
)

// Handler contains HTTP handlers for task endpoints
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// CreateTaskRequest represents the task creation request body
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SessionID   string `json:"sessionId"`
}

func (r *CreateTaskRequest) Validate() *validate.Errors {
	v := &validate.Errors{}
	v.Required("title", r.Title)
	v.MaxLength("title", r.Title, 200)
	v.MaxLength("description", r.Description, 2000)
	return v
}

// UpdateTaskRequest represents the task update request body
type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	SessionID   string `json:"sessionId"`
}

// Create handles task creation for authenticated users and anonymous
// sessions alike.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if v := req.Validate(); v.HasErrors() {
		httputil.RespondValidationError(w, v.Fields())
		return
	}

	p := principalFrom(r, req.SessionID)
	if err := ownership.Require(p); err != nil {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeMissingSession, http.StatusUnauthorized)
		return
	}

	t := &Task{
		Title:       req.Title,
		Description: req.Description,
	}
	if p.User != nil {
		t.OwnerUserID = &p.User.ID
	} else {
		sid := p.SessionID
		t.OwnerSessionID = &sid
	}

	created, err := h.repo.Create(r.Context(), t)
	if err != nil {
		logger.Error("failed to create task", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create task", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// List returns the tasks visible to the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	p := principalFrom(r, "")
	if err := ownership.Require(p); err != nil {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeMissingSession, http.StatusUnauthorized)
		return
	}

	tasks, err := h.repo.ListForPrincipal(r.Context(), p)
	if err != nil {
		logger.Error("failed to list tasks", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list tasks", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, tasks, http.StatusOK)
}

// Get returns a single task after an ownership check.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadAuthorized(w, r, "")
	if !ok {
		return
	}

	httputil.RespondJSON(w, t, http.StatusOK)
}

// Update modifies a task after an ownership check.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	v := &validate.Errors{}
	v.Required("title", req.Title)
	v.MaxLength("title", req.Title, 200)
	v.MaxLength("description", req.Description, 2000)
	if v.HasErrors() {
		httputil.RespondValidationError(w, v.Fields())
		return
	}

	t, ok := h.loadAuthorized(w, r, req.SessionID)
	if !ok {
		return
	}

	t.Title = req.Title
	t.Description = req.Description
	t.Completed = req.Completed

	if err := h.repo.Update(r.Context(), t); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "task not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update task", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update task", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, t, http.StatusOK)
}

// Delete removes a task after an ownership check.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	t, ok := h.loadAuthorized(w, r, "")
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), t.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "task not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete task", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete task", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "task deleted"}, http.StatusOK)
}

// loadAuthorized fetches the task from the URL and runs the ownership
// check, writing the error response itself on failure. The not-found
// check runs before any ownership decision.
func (h *Handler) loadAuthorized(w http.ResponseWriter, r *http.Request, bodySessionID string) (*Task, bool) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid task id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return nil, false
	}

	t, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "task not found", httputil.CodeNotFound, http.StatusNotFound)
			return nil, false
		}
		logger.Error("failed to get task", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get task", httputil.CodeInternalError, http.StatusInternalServerError)
		return nil, false
	}

	p := principalFrom(r, bodySessionID)
	if err := ownership.Authorize(p, t); err != nil {
		logger.Warn("task access denied", "task_id", id)
		httputil.RespondErrorWithCode(w, "access denied", httputil.CodeAccessDenied, http.StatusForbidden)
		return nil, false
	}

	return t, true
}

func principalFrom(r *http.Request, bodySessionID string) ownership.Principal {
	u, _ := auth.UserFromContext(r.Context())
	return ownership.Principal{
		User:      u,
		SessionID: session.Identifier(r, bodySessionID),
	}
}
