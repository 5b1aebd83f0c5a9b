package insight

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/sakif/mydevjourney/internal/model"
)

// PlaceholderLanguageStats returns the fixed language distribution shown in
// the recap. It is NOT computed from repository data.
//
// TODO: derive per-language shares from the languages of the repositories
// pushed to during the month once the gateway fetches them.
func PlaceholderLanguageStats() map[string]float64 {
	return map[string]float64{
		"JavaScript": 45,
		"TypeScript": 35,
		"Python":     20,
	}
}

// MonthWindow returns the first instant of the UTC calendar month containing
// ref and the first instant of the following month. Recap windows are
// half-open: [start, next).
func MonthWindow(ref time.Time) (start, next time.Time) {
	ref = ref.UTC()
	start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// EmptyRecap is the default recap answered when the activity source is
// unavailable: no activity and an empty language distribution.
func EmptyRecap(monthReference time.Time) model.RecapSummary {
	start, next := MonthWindow(monthReference)
	return model.RecapSummary{
		MostActiveWeekday: model.WeekdayCount{Name: model.NoActivity},
		LanguageStats:     map[string]float64{},
		GoalStats:         []model.GoalStat{},
		WindowStart:              start,
		WindowEnd:                next.Add(-time.Nanosecond),
	}
}

// Recap builds the monthly recap for the calendar month (UTC) that contains
// monthReference.
//
// Commits are the flattened commits of push events that occurred inside the
// month; a commit without its own timestamp is dated by its push event.
// Goal completion is computed for every goal that is not completed, from its
// progress records inside the month (one per day, as in Streak).
func Recap(events []model.RawActivityEvent, goals []model.Goal, progress []model.ProgressRecord, monthReference time.Time) model.RecapSummary {
	summary := EmptyRecap(monthReference)
	summary.LanguageStats = PlaceholderLanguageStats()
	summary.LanguageStatsPlaceholder = true
	start, next := MonthWindow(monthReference)

	commits := monthlyCommitTimes(events, start, next)
	summary.TotalCommits = len(commits)
	summary.MostActiveWeekday = mostActiveWeekday(commits)
	summary.AverageCommitsPerActiveDay = averagePerActiveDay(commits)
	summary.GoalStats = goalStats(goals, progress, start, next)

	return summary
}

func inWindow(t, start, next time.Time) bool {
	return !t.Before(start) && t.Before(next)
}

func monthlyCommitTimes(events []model.RawActivityEvent, start, next time.Time) []time.Time {
	var times []time.Time
	for _, raw := range events {
		push, ok := decode(raw).(pushEvent)
		if !ok || !inWindow(raw.OccurredAt, start, next) {
			continue
		}
		for _, c := range push.commits {
			if c.Timestamp != nil {
				times = append(times, *c.Timestamp)
			} else {
				times = append(times, raw.OccurredAt)
			}
		}
	}
	return times
}

// mostActiveWeekday picks the weekday with the most commits. Ties go to the
// weekday whose first commit came earliest in the commits slice.
func mostActiveWeekday(commits []time.Time) model.WeekdayCount {
	var counts [7]int
	var seen []time.Weekday
	for _, t := range commits {
		day := t.UTC().Weekday()
		if counts[day] == 0 {
			seen = append(seen, day)
		}
		counts[day]++
	}

	best := model.WeekdayCount{Name: model.NoActivity}
	for _, day := range seen {
		if counts[day] > best.Count {
			best = model.WeekdayCount{Name: day.String(), Count: counts[day]}
		}
	}
	return best
}

func averagePerActiveDay(commits []time.Time) float64 {
	perDay := make(map[string]int)
	for _, t := range commits {
		perDay[t.UTC().Format(DateLayout)]++
	}

	data := make(stats.Float64Data, 0, len(perDay))
	for _, n := range perDay {
		data = append(data, float64(n))
	}

	mean, err := stats.Mean(data)
	if err != nil {
		// stats.EmptyInputErr: no commits this month.
		return 0
	}
	rounded, err := stats.Round(mean, 2)
	if err != nil {
		return mean
	}
	return rounded
}

func goalStats(goals []model.Goal, progress []model.ProgressRecord, start, next time.Time) []model.GoalStat {
	byGoal := groupByGoal(progress)

	out := make([]model.GoalStat, 0, len(goals))
	for _, g := range goals {
		if g.IsCompleted() {
			continue
		}

		var inMonth []model.ProgressRecord
		for _, p := range byGoal[g.ID] {
			if inWindow(p.Date, start, next) {
				inMonth = append(inMonth, p)
			}
		}

		days := latestPerDay(inMonth)
		achieved := 0
		for _, p := range days {
			if p.Achieved {
				achieved++
			}
		}

		out = append(out, model.GoalStat{
			ID:             g.ID,
			Title:          g.Title,
			CompletionRate: completionRate(achieved, len(days)),
			AchievedDays:   achieved,
			TotalDays:      len(days),
		})
	}
	return out
}

func completionRate(achieved, total int) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(achieved) / float64(total) * 100
	return math.Max(0, math.Min(100, rate))
}
