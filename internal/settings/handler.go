package settings

import (
	"encoding/json"
	"net/http"

	"portfolio-api/internal/httputil"
	"portfolio-api/internal/logging"
	"portfolio-api/internal/validate"
)

// Handler contains HTTP handlers for site settings endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// UpdateSettingsRequest represents the settings update request body
type UpdateSettingsRequest struct {
	SiteTitle    string `json:"siteTitle"`
	Tagline      string `json:"tagline"`
	FooterText   string `json:"footerText"`
	GithubURL    string `json:"githubUrl"`
	LinkedinURL  string `json:"linkedinUrl"`
	ContactEmail string `json:"contactEmail"`
}

func (r *UpdateSettingsRequest) Validate() *validate.Errors {
	v := &validate.Errors{}
	v.Required("siteTitle", r.SiteTitle)
	v.MaxLength("siteTitle", r.SiteTitle, 100)
	v.MaxLength("tagline", r.Tagline, 200)
	v.MaxLength("footerText", r.FooterText, 500)
	v.MaxLength("githubUrl", r.GithubURL, 300)
	v.MaxLength("linkedinUrl", r.LinkedinURL, 300)
	v.Email("contactEmail", r.ContactEmail)
	return v
}

// Get returns the public site settings, creating the default row on
// first access.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	s, err := h.service.Get(r.Context())
	if err != nil {
		logger.Error("failed to get settings", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get settings", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, s, http.StatusOK)
}

// Update replaces the site settings. Admin only; the route is gated
// upstream.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if v := req.Validate(); v.HasErrors() {
		httputil.RespondValidationError(w, v.Fields())
		return
	}

	updated, err := h.service.Update(r.Context(), &Settings{
		SiteTitle:    req.SiteTitle,
		Tagline:      req.Tagline,
		FooterText:   req.FooterText,
		GithubURL:    req.GithubURL,
		LinkedinURL:  req.LinkedinURL,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		logger.Error("failed to update settings", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update settings", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, updated, http.StatusOK)
}
