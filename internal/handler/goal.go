package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/mydevjourney/internal/auth"
	"github.com/sakif/mydevjourney/internal/model"
	"github.com/sakif/mydevjourney/internal/service"
)

// GoalManager is the goal use-case surface (*service.GoalService).
type GoalManager interface {
	List(ctx context.Context, userID string) ([]model.Goal, error)
	Create(ctx context.Context, userID string, in service.GoalInput) (*model.Goal, error)
	Delete(ctx context.Context, userID, goalID string) error
	RecordProgress(ctx context.Context, userID, goalID string, in service.ProgressInput) (*model.ProgressRecord, error)
	Streaks(ctx context.Context, userID string) ([]model.GoalStreak, error)
}

// GoalHandler serves goals, their progress and streaks. Every route sits
// behind auth.RequireAuth; the user always comes from the session, never
// from the request body.
type GoalHandler struct {
	goals  GoalManager
	logger *slog.Logger
}

// NewGoalHandler creates a GoalHandler.
func NewGoalHandler(goals GoalManager, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{goals: goals, logger: logger}
}

// HandleList returns the user's goals, newest first.
//
// HTTP: GET /api/goals
func (h *GoalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	goals, err := h.goals.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// HandleCreate creates a goal.
//
// HTTP: POST /api/goals
//
//	{"title":"Commit daily","description":"","targetMetric":{"type":"commits","count":1,"period":"daily"}}
func (h *GoalHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in service.GoalInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	goal, err := h.goals.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// HandleDelete deletes a goal and all of its progress.
//
// HTTP: DELETE /api/goals/{id}
func (h *GoalHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.goals.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Goal deleted successfully"})
}

// HandleRecordProgress appends one day of progress to a goal.
//
// HTTP: POST /api/goals/{id}/progress
//
//	{"date":"2026-10-18T00:00:00Z","achieved":true,"metrics":{"commits":3}}
//
// date is optional and defaults to today (UTC).
func (h *GoalHandler) HandleRecordProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in service.ProgressInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	record, err := h.goals.RecordProgress(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// HandleStreaks returns the current streak of every goal.
//
// HTTP: GET /api/goals/streaks
func (h *GoalHandler) HandleStreaks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	streaks, err := h.goals.Streaks(r.Context(), userID)
	if err != nil {
		h.logger.Error("computing streaks", slog.String("userID", userID), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streaks)
}

// requireUser reads the session user set by auth.RequireAuth and writes a
// 401 when it is missing.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return "", false
	}
	return userID, true
}
