package model

import "time"

// Target metric types a goal can track.
const (
	MetricCommits = "commits"
	MetricPRs     = "prs"
	MetricIssues  = "issues"
)

// Target periods.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// Goal statuses. An empty status is treated as active.
const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
)

// TargetMetric describes what a goal measures: e.g. 3 commits daily.
type TargetMetric struct {
	Type   string `json:"type"`
	Count  int    `json:"count"`
	Period string `json:"period"`
}

// Goal is a user-defined development goal.
//
// A goal belongs to exactly one user (UserID). It is never edited in place;
// it is created, accumulates progress records, and is eventually deleted
// (which also deletes its progress).
type Goal struct {
	ID           string       `json:"id"`
	UserID       string       `json:"-"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	TargetMetric TargetMetric `json:"targetMetric"`
	Status       string       `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// IsCompleted reports whether the goal has been marked completed.
func (g Goal) IsCompleted() bool {
	return g.Status == GoalStatusCompleted
}

// ProgressMetrics are the optional counters attached to a progress record.
type ProgressMetrics struct {
	Commits *int `json:"commits,omitempty"`
	PRs     *int `json:"prs,omitempty"`
	Issues  *int `json:"issues,omitempty"`
}

// ProgressRecord is one day of progress against a goal.
//
// Date has calendar-day granularity (midnight UTC). RecordedAt is when the
// record was written; it decides which record wins when several exist for
// the same goal and day.
type ProgressRecord struct {
	ID         string          `json:"id"`
	GoalID     string          `json:"goalId"`
	Date       time.Time       `json:"date"`
	Achieved   bool            `json:"achieved"`
	Metrics    ProgressMetrics `json:"metrics"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// GoalStreak is the current streak of one goal.
type GoalStreak struct {
	GoalID        string `json:"goalId"`
	Title         string `json:"title"`
	CurrentStreak int    `json:"currentStreak"`
}
