// Package gateway reads a user's activity from the GitHub REST API and turns
// it into model.RawActivityEvent values for the insight engine.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/sakif/mydevjourney/internal/apperror"
	"github.com/sakif/mydevjourney/internal/model"
)

// MaxPageSize is the largest page GitHub's events endpoint serves.
const MaxPageSize = 100

// ActivityFetcher fetches the recent activity of the user who owns token.
type ActivityFetcher interface {
	FetchEvents(ctx context.Context, token string, limit int) ([]model.RawActivityEvent, error)
}

// GitHubGateway is the ActivityFetcher backed by api.github.com.
//
// One rate-limit waiter is shared by every request, so secondary rate limits
// hit for one user slow down the whole process instead of failing it.
type GitHubGateway struct {
	transport http.RoundTripper
	baseURL   *url.URL
	logger    *slog.Logger
}

var _ ActivityFetcher = (*GitHubGateway)(nil)

// NewGitHubGateway builds a gateway. apiBaseURL may be empty for
// api.github.com; set it for GitHub Enterprise or tests.
func NewGitHubGateway(apiBaseURL string, logger *slog.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("gateway: creating rate limit waiter: %w", err)
	}

	g := &GitHubGateway{
		transport: rateLimitWaiter,
		logger:    logger,
	}
	if apiBaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(apiBaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("gateway: parsing API base URL %q: %w", apiBaseURL, err)
		}
		g.baseURL = base
	}
	return g, nil
}

// client returns a go-github client that authenticates as token.
func (g *GitHubGateway) client(token string) *github.Client {
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   g.transport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		},
	}
	c := github.NewClient(httpClient)
	if g.baseURL != nil {
		c.BaseURL = g.baseURL
	}
	return c
}

// FetchEvents resolves the login behind token and lists up to limit of that
// user's most recent events, private ones included. Every failure is
// wrapped in apperror.ErrUpstream.
func (g *GitHubGateway) FetchEvents(ctx context.Context, token string, limit int) ([]model.RawActivityEvent, error) {
	if token == "" {
		return nil, apperror.Upstream("GitHub", fmt.Errorf("no access token"))
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	c := g.client(token)

	user, _, err := c.Users.Get(ctx, "")
	if err != nil {
		return nil, apperror.Upstream("GitHub", fmt.Errorf("resolving authenticated user: %w", err))
	}

	events, _, err := c.Activity.ListEventsPerformedByUser(ctx, user.GetLogin(), false, &github.ListOptions{PerPage: limit})
	if err != nil {
		return nil, apperror.Upstream("GitHub", fmt.Errorf("listing events of %s: %w", user.GetLogin(), err))
	}
	g.logger.Debug("fetched github events", "login", user.GetLogin(), "count", len(events))

	out := make([]model.RawActivityEvent, 0, len(events))
	for _, e := range events {
		out = append(out, g.convert(e))
	}
	return out, nil
}

// convert maps one go-github event onto the engine's raw event. A payload
// that fails to parse leaves the kind-specific fields empty.
func (g *GitHubGateway) convert(e *github.Event) model.RawActivityEvent {
	raw := model.RawActivityEvent{
		ID:         e.GetID(),
		Kind:       e.GetType(),
		OccurredAt: e.GetCreatedAt().Time.UTC(),
		Repository: e.GetRepo().GetName(),
	}

	kind, known := kindByType[e.GetType()]
	if !known {
		return raw
	}
	raw.Kind = kind

	payload, err := e.ParsePayload()
	if err != nil {
		g.logger.Warn("unparseable github event payload", "event_id", e.GetID(), "type", e.GetType(), "error", err)
		return raw
	}

	switch p := payload.(type) {
	case *github.PushEvent:
		for _, c := range p.Commits {
			commit := model.Commit{SHA: c.GetSHA(), Message: c.GetMessage()}
			if c.Timestamp != nil {
				ts := c.Timestamp.Time.UTC()
				commit.Timestamp = &ts
			}
			raw.Payload.Commits = append(raw.Payload.Commits, commit)
		}
	case *github.PullRequestEvent:
		raw.Payload.Action = p.GetAction()
		raw.Payload.Title = p.GetPullRequest().GetTitle()
	case *github.IssuesEvent:
		raw.Payload.Action = p.GetAction()
		raw.Payload.Title = p.GetIssue().GetTitle()
	case *github.CreateEvent:
		raw.Payload.RefType = p.GetRefType()
		raw.Payload.Ref = p.GetRef()
	case *github.DeleteEvent:
		raw.Payload.RefType = p.GetRefType()
		raw.Payload.Ref = p.GetRef()
	}
	return raw
}

// kindByType maps GitHub event type names to model kinds. Types missing
// here keep their GitHub name.
var kindByType = map[string]string{
	"PushEvent":        model.KindPush,
	"PullRequestEvent": model.KindPullRequest,
	"IssuesEvent":      model.KindIssue,
	"CreateEvent":      model.KindCreate,
	"DeleteEvent":      model.KindDelete,
	"WatchEvent":       model.KindWatch,
	"ForkEvent":        model.KindFork,
}
