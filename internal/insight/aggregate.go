package insight

import (
	"sort"
	"time"

	"github.com/sakif/mydevjourney/internal/model"
)

const (
	// MaxRecentActivity caps ActivityStats.RecentActivity.
	MaxRecentActivity = 10

	// DateLayout is the key format of ActivityStats.DailyActivity.
	DateLayout = "2006-01-02"

	actionOpened = "opened"
)

// Aggregate summarises the events that occurred in [windowStart, now].
//
// Only push, opened pull requests and opened issues feed the three totals,
// but every retained event counts towards its UTC day in DailyActivity and
// is eligible for RecentActivity (newest first, at most MaxRecentActivity,
// ties keep input order).
func Aggregate(events []model.RawActivityEvent, windowStart, now time.Time) model.ActivityStats {
	stats := model.EmptyActivityStats()
	recent := make([]model.NormalizedActivity, 0, len(events))

	for _, raw := range events {
		if raw.OccurredAt.Before(windowStart) || raw.OccurredAt.After(now) {
			continue
		}

		ev := decode(raw)
		switch e := ev.(type) {
		case pushEvent:
			stats.TotalCommits += len(e.commits)
		case pullRequestEvent:
			if e.action == actionOpened {
				stats.TotalPRs++
			}
		case issueEvent:
			if e.action == actionOpened {
				stats.TotalIssues++
			}
		}

		stats.DailyActivity[raw.OccurredAt.UTC().Format(DateLayout)]++
		recent = append(recent, normalize(raw, ev))
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].OccurredAt.After(recent[j].OccurredAt)
	})
	if len(recent) > MaxRecentActivity {
		recent = recent[:MaxRecentActivity:MaxRecentActivity]
	}
	stats.RecentActivity = recent

	return stats
}
