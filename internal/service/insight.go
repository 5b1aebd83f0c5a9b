package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/mydevjourney/internal/apperror"
	"github.com/sakif/mydevjourney/internal/gateway"
	"github.com/sakif/mydevjourney/internal/insight"
	"github.com/sakif/mydevjourney/internal/metrics"
	"github.com/sakif/mydevjourney/internal/model"
)

// TokenSource hands out a user's GitHub access token. AuthService is the
// production implementation.
type TokenSource interface {
	GitHubToken(ctx context.Context, userID string) (string, error)
}

// StaticToken is a TokenSource that returns the same token for every user.
// The CLI uses it with GITHUB_TOKEN.
type StaticToken string

func (t StaticToken) GitHubToken(context.Context, string) (string, error) {
	return string(t), nil
}

// InsightConfig tunes InsightService.
type InsightConfig struct {
	// WindowDays is the trailing window of Stats.
	WindowDays int
	// PageSize is how many events are requested from GitHub.
	PageSize int
	// FailOnUpstream returns GitHub failures to the caller instead of
	// answering with empty stats / a default recap.
	FailOnUpstream bool
}

// InsightService computes the GitHub stats and monthly recap views.
type InsightService struct {
	fetcher gateway.ActivityFetcher
	tokens  TokenSource
	goals   *GoalService
	metrics *metrics.Metrics
	now     Clock
	cfg     InsightConfig
	logger  *slog.Logger
}

// NewInsightService creates an InsightService. goals may be nil, in which
// case recaps carry no goal stats.
func NewInsightService(
	fetcher gateway.ActivityFetcher,
	tokens TokenSource,
	goals *GoalService,
	m *metrics.Metrics,
	clock Clock,
	cfg InsightConfig,
	logger *slog.Logger,
) *InsightService {
	if clock == nil {
		clock = time.Now
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = gateway.MaxPageSize
	}
	return &InsightService{
		fetcher: fetcher,
		tokens:  tokens,
		goals:   goals,
		metrics: m,
		now:     clock,
		cfg:     cfg,
		logger:  logger,
	}
}

// Stats aggregates the user's activity over the trailing window.
//
// When GitHub cannot be reached the failure is logged and counted, and
// zeroed stats are returned with a nil error.
func (s *InsightService) Stats(ctx context.Context, userID string) (model.ActivityStats, error) {
	events, err := s.fetchEvents(ctx, userID)
	if err != nil {
		if s.degrade("stats", userID, err) {
			return model.EmptyActivityStats(), nil
		}
		return model.ActivityStats{}, err
	}

	now := s.now().UTC()
	windowStart := now.AddDate(0, 0, -s.cfg.WindowDays)
	return insight.Aggregate(events, windowStart, now), nil
}

// Recap builds the summary of the calendar month containing monthRef.
//
// Events are fetched from GitHub while goals and progress load from the
// database. A GitHub failure yields the default recap for that month; a
// database failure is returned.
func (s *InsightService) Recap(ctx context.Context, userID string, monthRef time.Time) (model.RecapSummary, error) {
	var (
		events      []model.RawActivityEvent
		upstreamErr error
		goals       []model.Goal
		progress    []model.ProgressRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Kept out of the group error so a GitHub outage does not cancel the
		// database loads.
		events, upstreamErr = s.fetchEvents(gctx, userID)
		return nil
	})
	if s.goals != nil {
		g.Go(func() error {
			var err error
			goals, progress, err = s.goals.goalsWithProgress(gctx, userID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return model.RecapSummary{}, fmt.Errorf("service/insight: loading goals for recap: %w", err)
	}

	if upstreamErr != nil {
		if s.degrade("recap", userID, upstreamErr) {
			return insight.EmptyRecap(monthRef), nil
		}
		return model.RecapSummary{}, upstreamErr
	}

	return insight.Recap(events, goals, progress, monthRef), nil
}

func (s *InsightService) fetchEvents(ctx context.Context, userID string) ([]model.RawActivityEvent, error) {
	token, err := s.tokens.GitHubToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/insight: loading GitHub token: %w", err)
	}
	return s.fetcher.FetchEvents(ctx, token, s.cfg.PageSize)
}

// degrade reports whether err should be answered with default values.
// Only upstream failures qualify, and only when FailOnUpstream is off.
func (s *InsightService) degrade(operation, userID string, err error) bool {
	if !errors.Is(err, apperror.ErrUpstream) {
		return false
	}
	s.metrics.UpstreamFailure(operation)
	s.logger.Warn("github unavailable, serving defaults",
		slog.String("operation", operation),
		slog.String("userID", userID),
		slog.String("error", err.Error()),
	)
	return !s.cfg.FailOnUpstream
}
