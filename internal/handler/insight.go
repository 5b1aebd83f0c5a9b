package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/mydevjourney/internal/apperror"
	"github.com/sakif/mydevjourney/internal/model"
)

// monthLayout is the format of the recap "month" query parameter.
const monthLayout = "2006-01"

// InsightProvider computes the dashboard views (*service.InsightService).
type InsightProvider interface {
	Stats(ctx context.Context, userID string) (model.ActivityStats, error)
	Recap(ctx context.Context, userID string, monthRef time.Time) (model.RecapSummary, error)
}

// InsightHandler serves the GitHub stats and monthly recap.
type InsightHandler struct {
	insights InsightProvider
	now      func() time.Time
	logger   *slog.Logger
}

// NewInsightHandler creates an InsightHandler. now picks the default recap
// month; pass time.Now.
func NewInsightHandler(insights InsightProvider, now func() time.Time, logger *slog.Logger) *InsightHandler {
	return &InsightHandler{insights: insights, now: now, logger: logger}
}

// HandleStats returns the activity stats of the trailing window.
//
// HTTP: GET /api/github/stats
func (h *InsightHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.insights.Stats(r.Context(), userID)
	if err != nil {
		h.logger.Error("computing stats", slog.String("userID", userID), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleRecap returns the recap of one calendar month (UTC).
//
// HTTP: GET /api/recap?month=2026-10
//
// month defaults to the current month.
func (h *InsightHandler) HandleRecap(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	monthRef := h.now().UTC()
	if month := r.URL.Query().Get("month"); month != "" {
		parsed, err := time.Parse(monthLayout, month)
		if err != nil {
			writeError(w, apperror.ValidationFailed("month", "month must look like YYYY-MM"))
			return
		}
		monthRef = parsed
	}

	recap, err := h.insights.Recap(r.Context(), userID, monthRef)
	if err != nil {
		h.logger.Error("building recap", slog.String("userID", userID), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recap)
}
