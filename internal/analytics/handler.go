package analytics

import (
	"net/http"
	"strconv"

	"portfolio-api/internal/httputil"
	"portfolio-api/internal/logging"
)

const (
	defaultStatsDays = 7
	maxStatsDays     = 31
)

// Handler contains HTTP handlers for analytics endpoints
type Handler struct {
	recorder *Recorder
	logger   *logging.Logger
}

func NewHandler(recorder *Recorder, logger *logging.Logger) *Handler {
	return &Handler{recorder: recorder, logger: logger}
}

// Stats returns page-view counts for the last ?days= days. Admin only;
// the route is gated upstream.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	days := defaultStatsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.RespondErrorWithCode(w, "days must be a positive integer", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
			return
		}
		days = parsed
	}
	if days > maxStatsDays {
		days = maxStatsDays
	}

	stats, err := h.recorder.Stats(r.Context(), days)
	if err != nil {
		logger.Error("failed to read analytics", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to read analytics", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]any{"days": stats}, http.StatusOK)
}
