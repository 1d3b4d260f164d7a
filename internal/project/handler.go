package project

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"portfolio-api/internal/auth"
	"portfolio-api/internal/httputil"
	"portfolio-api/internal/logging"
	"portfolio-api/internal/validate"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Handler contains HTTP handlers for project endpoints
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// ProjectRequest represents the project create/update request body
type ProjectRequest struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	RepoURL     string   `json:"repoUrl"`
	LiveURL     string   `json:"liveUrl"`
	Featured    bool     `json:"featured"`
}

func (r *ProjectRequest) Validate() *validate.Errors {
	v := &validate.Errors{}
	v.Required("title", r.Title)
	v.MaxLength("title", r.Title, 200)
	v.Required("slug", r.Slug)
	v.MaxLength("slug", r.Slug, 100)
	if r.Slug != "" && !slugPattern.MatchString(r.Slug) {
		v.Add("slug", "must contain only lowercase letters, digits and hyphens")
	}
	v.MaxLength("description", r.Description, 5000)
	for _, tag := range r.Tags {
		if strings.TrimSpace(tag) == "" {
			v.Add("tags", "tags must not be empty")
			break
		}
	}
	return v
}

// List returns the public project listing. Supports ?featured=true and
// ?tag= filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var filter ListFilter
	switch r.URL.Query().Get("featured") {
	case "true":
		featured := true
		filter.Featured = &featured
	case "false":
		featured := false
		filter.Featured = &featured
	}
	filter.Tag = r.URL.Query().Get("tag")

	projects, err := h.repo.List(r.Context(), filter)
	if err != nil {
		logger.Error("failed to list projects", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list projects", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, projects, http.StatusOK)
}

// GetBySlug returns a single public project.
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	slug := chi.URLParam(r, "slug")

	p, err := h.repo.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "project not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get project", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get project", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

// Create adds a new project. Admin only; the route is gated upstream.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if v := req.Validate(); v.HasErrors() {
		httputil.RespondValidationError(w, v.Fields())
		return
	}

	p := &Project{
		Title:       req.Title,
		Slug:        strings.ToLower(req.Slug),
		Description: req.Description,
		Tags:        req.Tags,
		RepoURL:     req.RepoURL,
		LiveURL:     req.LiveURL,
		Featured:    req.Featured,
	}
	if u, ok := auth.UserFromContext(r.Context()); ok {
		p.OwnerUserID = &u.ID
	}

	created, err := h.repo.Create(r.Context(), p)
	if err != nil {
		if errors.Is(err, ErrDuplicateSlug) {
			httputil.RespondValidationError(w, []validate.FieldError{{Field: "slug", Message: "slug already in use"}})
			return
		}
		logger.Error("failed to create project", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create project", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Update modifies an existing project. Admin only.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid project id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if v := req.Validate(); v.HasErrors() {
		httputil.RespondValidationError(w, v.Fields())
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "project not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get project", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get project", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	p.Title = req.Title
	p.Slug = strings.ToLower(req.Slug)
	p.Description = req.Description
	p.Tags = req.Tags
	p.RepoURL = req.RepoURL
	p.LiveURL = req.LiveURL
	p.Featured = req.Featured

	if err := h.repo.Update(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateSlug):
			httputil.RespondValidationError(w, []validate.FieldError{{Field: "slug", Message: "slug already in use"}})
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "project not found", httputil.CodeNotFound, http.StatusNotFound)
		default:
			logger.Error("failed to update project", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update project", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

// Delete removes a project. Admin only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid project id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "project not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete project", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete project", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "project deleted"}, http.StatusOK)
}
