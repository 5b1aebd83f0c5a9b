package model

import "time"

// NoActivity is the weekday name reported when a month has no commits.
const NoActivity = "No activity"

// WeekdayCount names the most active weekday and its commit count.
type WeekdayCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GoalStat is a goal's completion within a recap window.
// CompletionRate is a percentage in [0, 100].
type GoalStat struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	CompletionRate float64 `json:"completionRate"`
	AchievedDays   int     `json:"achievedDays"`
	TotalDays      int     `json:"totalDays"`
}

// RecapSummary is the monthly recap.
//
// LanguageStats is NOT derived from real data: a computed recap carries a
// fixed placeholder distribution with LanguageStatsPlaceholder set. The
// default recap served when GitHub is unavailable has an empty one.
type RecapSummary struct {
	MostActiveWeekday          WeekdayCount       `json:"mostActiveDay"`
	LanguageStats              map[string]float64 `json:"languageStats"`
	LanguageStatsPlaceholder   bool               `json:"languageStatsPlaceholder"`
	GoalStats                  []GoalStat         `json:"goalStats"`
	TotalCommits               int                `json:"totalCommits"`
	AverageCommitsPerActiveDay float64            `json:"averageCommitsPerActiveDay"`
	WindowStart                time.Time          `json:"startDate"`
	WindowEnd                  time.Time          `json:"endDate"`
}
