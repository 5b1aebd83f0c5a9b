// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Event kind tags as produced by the GitHub gateway.
//
// The gateway maps GitHub's event type names ("PushEvent", "IssuesEvent", ...)
// to these short tags. Kinds we don't know about keep their GitHub name, e.g.
// "ReleaseEvent", and are summarised generically.
const (
	KindPush        = "push"
	KindPullRequest = "pull_request"
	KindIssue       = "issue"
	KindCreate      = "create"
	KindDelete      = "delete"
	KindWatch       = "watch"
	KindFork        = "fork"
)

// Commit is one commit carried inside a push event.
// Timestamp is nil when the upstream payload didn't include one.
type Commit struct {
	SHA       string     `json:"sha"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// EventPayload holds the kind-specific fields of a raw event.
// Every field is optional; which ones are meaningful depends on the kind.
type EventPayload struct {
	Commits []Commit `json:"commits,omitempty"` // push
	Action  string   `json:"action,omitempty"`  // pull_request, issue
	Title   string   `json:"title,omitempty"`   // pull_request, issue
	RefType string   `json:"refType,omitempty"` // create, delete
	Ref     string   `json:"ref,omitempty"`     // create, delete
}

// RawActivityEvent is one entry of a user's GitHub activity log.
// It is immutable once the gateway has produced it.
type RawActivityEvent struct {
	ID         string       `json:"id"`
	Kind       string       `json:"kind"`
	OccurredAt time.Time    `json:"occurredAt"`
	Repository string       `json:"repository"`
	Payload    EventPayload `json:"payload"`
}

// NormalizedActivity is the display-ready projection of a RawActivityEvent.
type NormalizedActivity struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurredAt"`
	Repository string    `json:"repository"`
	Summary    string    `json:"summary"`
}

// ActivityStats summarises a trailing window of activity.
// DailyActivity keys are UTC calendar dates formatted as "2006-01-02".
type ActivityStats struct {
	TotalCommits   int                  `json:"totalCommits"`
	TotalPRs       int                  `json:"totalPRs"`
	TotalIssues    int                  `json:"totalIssues"`
	RecentActivity []NormalizedActivity `json:"recentActivity"`
	DailyActivity  map[string]int       `json:"dailyActivity"`
}

// EmptyActivityStats returns zeroed stats with non-nil collections, so the
// JSON encoding is [] and {} rather than null.
func EmptyActivityStats() ActivityStats {
	return ActivityStats{
		RecentActivity: []NormalizedActivity{},
		DailyActivity:  map[string]int{},
	}
}
