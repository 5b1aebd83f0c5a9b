package insight

import (
	"math"
	"sort"
	"time"

	"github.com/sakif/mydevjourney/internal/model"
)

// Streak returns the current streak of a single goal's progress.
//
// Walking backwards from referenceNow, each record extends the streak while
// it is achieved and lies at most one day before the previous one. The first
// record that is not achieved, or that leaves a gap of more than a day, ends
// the walk; broken days are never skipped over.
//
// When several records share a calendar day only one counts, see latestPerDay.
func Streak(progress []model.ProgressRecord, referenceNow time.Time) int {
	days := latestPerDay(progress)
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})

	count := 0
	lastDate := referenceNow
	for _, p := range days {
		if daysBetween(lastDate, p.Date) > 1 || !p.Achieved {
			break
		}
		count++
		lastDate = p.Date
	}
	return count
}

// Streaks computes a GoalStreak for every goal, in goal order.
// progress may hold records of any goal; records of unknown goals are ignored.
func Streaks(goals []model.Goal, progress []model.ProgressRecord, referenceNow time.Time) []model.GoalStreak {
	byGoal := groupByGoal(progress)

	streaks := make([]model.GoalStreak, 0, len(goals))
	for _, g := range goals {
		streaks = append(streaks, model.GoalStreak{
			GoalID:        g.ID,
			Title:         g.Title,
			CurrentStreak: Streak(byGoal[g.ID], referenceNow),
		})
	}
	return streaks
}

// daysBetween is floor((later - earlier) / 24h). It is negative when
// earlier is actually in the future.
func daysBetween(later, earlier time.Time) int {
	return int(math.Floor(later.Sub(earlier).Hours() / 24))
}

// latestPerDay keeps one record per UTC calendar day: the one with the latest
// RecordedAt, or the later one in input order when RecordedAt is equal.
// The result keeps the order in which each day was first seen.
func latestPerDay(progress []model.ProgressRecord) []model.ProgressRecord {
	out := make([]model.ProgressRecord, 0, len(progress))
	index := make(map[string]int, len(progress))

	for _, p := range progress {
		day := p.Date.UTC().Format(DateLayout)
		i, seen := index[day]
		if !seen {
			index[day] = len(out)
			out = append(out, p)
			continue
		}
		if !p.RecordedAt.Before(out[i].RecordedAt) {
			out[i] = p
		}
	}
	return out
}

func groupByGoal(progress []model.ProgressRecord) map[string][]model.ProgressRecord {
	byGoal := make(map[string][]model.ProgressRecord)
	for _, p := range progress {
		byGoal[p.GoalID] = append(byGoal[p.GoalID], p)
	}
	return byGoal
}
