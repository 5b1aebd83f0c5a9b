package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/mydevjourney/internal/model"
	"github.com/sakif/mydevjourney/internal/repository"
)

var _ repository.ProgressRepository = (*DB)(nil)

// dayLayout is how progress dates are stored: one calendar day, no time.
const dayLayout = "2006-01-02"

// AddProgress appends a progress record. Records are never updated; a second
// record for the same goal and day is simply another row.
func (db *DB) AddProgress(ctx context.Context, record *model.ProgressRecord) error {
	record.ID = xid.New().String()
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}
	day := record.Date.UTC().Format(dayLayout)
	record.Date, _ = time.Parse(dayLayout, day)

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO progress (id, goal_id, date, achieved, commits, prs, issues, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.GoalID,
		day,
		record.Achieved,
		nullableInt(record.Metrics.Commits),
		nullableInt(record.Metrics.PRs),
		nullableInt(record.Metrics.Issues),
		record.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting progress for goal %s: %w", record.GoalID, err)
	}
	return nil
}

// ListProgress returns the progress records of goalIDs, newest date first.
// Within one day rows come back in the order they were written.
func (db *DB) ListProgress(ctx context.Context, goalIDs []string) ([]model.ProgressRecord, error) {
	records := []model.ProgressRecord{}
	if len(goalIDs) == 0 {
		return records, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(goalIDs)), ",")
	args := make([]any, len(goalIDs))
	for i, id := range goalIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, goal_id, date, achieved, commits, prs, issues, recorded_at
		 FROM progress
		 WHERE goal_id IN (`+placeholders+`)
		 ORDER BY date DESC, rowid ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r                    model.ProgressRecord
			day                  string
			commits, prs, issues sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.GoalID, &day, &r.Achieved, &commits, &prs, &issues, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning progress: %w", err)
		}
		r.Date, err = time.Parse(dayLayout, day)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parsing progress date %q: %w", day, err)
		}
		r.Metrics = model.ProgressMetrics{
			Commits: intPtr(commits),
			PRs:     intPtr(prs),
			Issues:  intPtr(issues),
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating progress: %w", err)
	}
	return records, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
