// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository interfaces, never *sqlite.DB, so the tests in
// this package run against in-memory fakes. They return apperror values and
// know nothing about HTTP; the same methods back the JSON API and the CLI.
//
// Time is injected as a clock function. Streaks and recaps depend on "now",
// and tests pin it.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/mydevjourney/internal/apperror"
	"github.com/sakif/mydevjourney/internal/insight"
	"github.com/sakif/mydevjourney/internal/metrics"
	"github.com/sakif/mydevjourney/internal/model"
	"github.com/sakif/mydevjourney/internal/repository"
)

// MaxGoalTitleLength is counted in characters, not bytes.
const (
	MaxGoalTitleLength       = 200
	MaxGoalDescriptionLength = 2000
)

// Clock returns the current time. time.Now in production.
type Clock func() time.Time

// GoalInput is what a caller supplies to create a goal.
type GoalInput struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	TargetMetric model.TargetMetric `json:"targetMetric"`
}

// ProgressInput is one day of progress. A nil Date means today.
type ProgressInput struct {
	Date     *time.Time            `json:"date"`
	Achieved bool                  `json:"achieved"`
	Metrics  model.ProgressMetrics `json:"metrics"`
}

// GoalService manages goals and their progress records.
type GoalService struct {
	goals    repository.GoalRepository
	progress repository.ProgressRepository
	metrics  *metrics.Metrics
	now      Clock
	logger   *slog.Logger
}

// NewGoalService creates a GoalService. A nil clock means time.Now; nil
// metrics records nothing.
func NewGoalService(
	goals repository.GoalRepository,
	progress repository.ProgressRepository,
	m *metrics.Metrics,
	clock Clock,
	logger *slog.Logger,
) *GoalService {
	if clock == nil {
		clock = time.Now
	}
	return &GoalService{
		goals:    goals,
		progress: progress,
		metrics:  m,
		now:      clock,
		logger:   logger,
	}
}

// List returns the user's goals, newest first.
func (s *GoalService) List(ctx context.Context, userID string) ([]model.Goal, error) {
	goals, err := s.goals.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/goal: listing goals of %s: %w", userID, err)
	}
	return goals, nil
}

// Create validates input and stores a new active goal for userID.
func (s *GoalService) Create(ctx context.Context, userID string, in GoalInput) (*model.Goal, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "goal title is required")
	}
	if utf8.RuneCountInString(title) > MaxGoalTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("goal title must be %d characters or fewer", MaxGoalTitleLength))
	}
	if utf8.RuneCountInString(description) > MaxGoalDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("goal description must be %d characters or fewer", MaxGoalDescriptionLength))
	}
	if err := validateTarget(in.TargetMetric); err != nil {
		return nil, err
	}

	goal := &model.Goal{
		UserID:       userID,
		Title:        title,
		Description:  description,
		TargetMetric: in.TargetMetric,
		Status:       model.GoalStatusActive,
	}
	if err := s.goals.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("service/goal: creating goal: %w", err)
	}

	s.metrics.GoalCreated()
	s.logger.Info("goal created",
		slog.String("userID", userID),
		slog.String("goalID", goal.ID),
		slog.String("metric", goal.TargetMetric.Type),
	)
	return goal, nil
}

func validateTarget(t model.TargetMetric) error {
	switch t.Type {
	case model.MetricCommits, model.MetricPRs, model.MetricIssues:
	default:
		return apperror.ValidationFailed("targetMetric.type", "target type must be one of commits, prs, issues")
	}
	if t.Count < 1 {
		return apperror.ValidationFailed("targetMetric.count", "target count must be at least 1")
	}
	switch t.Period {
	case model.PeriodDaily, model.PeriodWeekly, model.PeriodMonthly:
	default:
		return apperror.ValidationFailed("targetMetric.period", "target period must be one of daily, weekly, monthly")
	}
	return nil
}

// Delete removes one of the user's goals together with all its progress.
// A goal that does not exist or belongs to someone else is ErrNotFound.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if goalID == "" {
		return apperror.ValidationFailed("id", "goal id is required")
	}
	if err := s.goals.DeleteGoal(ctx, userID, goalID); err != nil {
		return fmt.Errorf("service/goal: deleting goal %s: %w", goalID, err)
	}

	s.metrics.GoalDeleted()
	s.logger.Info("goal deleted", slog.String("userID", userID), slog.String("goalID", goalID))
	return nil
}

// RecordProgress appends a progress record to one of the user's goals.
//
// The date is truncated to its UTC calendar day. Dates after today are
// rejected: a future record would count towards the current streak.
// Recording the same day twice is allowed; the later record wins when
// streaks and recaps are computed.
func (s *GoalService) RecordProgress(ctx context.Context, userID, goalID string, in ProgressInput) (*model.ProgressRecord, error) {
	if _, err := s.goals.GetGoal(ctx, userID, goalID); err != nil {
		return nil, fmt.Errorf("service/goal: recording progress: %w", err)
	}

	now := s.now().UTC()
	today := truncateDay(now)
	day := today
	if in.Date != nil {
		day = truncateDay(in.Date.UTC())
	}
	if day.After(today) {
		return nil, apperror.ValidationFailed("date", "progress cannot be recorded for a future date")
	}

	counters := []struct {
		field string
		value *int
	}{
		{"metrics.commits", in.Metrics.Commits},
		{"metrics.prs", in.Metrics.PRs},
		{"metrics.issues", in.Metrics.Issues},
	}
	for _, c := range counters {
		if c.value != nil && *c.value < 0 {
			return nil, apperror.ValidationFailed(c.field, "metrics must not be negative")
		}
	}

	record := &model.ProgressRecord{
		GoalID:     goalID,
		Date:       day,
		Achieved:   in.Achieved,
		Metrics:    in.Metrics,
		RecordedAt: now,
	}
	if err := s.progress.AddProgress(ctx, record); err != nil {
		return nil, fmt.Errorf("service/goal: adding progress to %s: %w", goalID, err)
	}

	s.metrics.ProgressRecorded(record.Achieved)
	s.logger.Debug("progress recorded",
		slog.String("goalID", goalID),
		slog.String("date", day.Format(insight.DateLayout)),
		slog.Bool("achieved", record.Achieved),
	)
	return record, nil
}

// Streaks returns the current streak of every goal of the user, in the
// order List returns them.
func (s *GoalService) Streaks(ctx context.Context, userID string) ([]model.GoalStreak, error) {
	goals, progress, err := s.goalsWithProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return insight.Streaks(goals, progress, s.now()), nil
}

// goalsWithProgress loads the user's goals and every progress record of them.
func (s *GoalService) goalsWithProgress(ctx context.Context, userID string) ([]model.Goal, []model.ProgressRecord, error) {
	goals, err := s.List(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}

	progress, err := s.progress.ListProgress(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("service/goal: listing progress of %s: %w", userID, err)
	}
	return goals, progress, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
