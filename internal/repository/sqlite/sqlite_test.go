package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/mydevjourney/internal/model"
)

// newTestDB returns an in-memory database that is closed when the test ends.
// Each call gets its own, empty database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, githubID int64, login string) *model.User {
	t.Helper()
	user := &model.User{
		GitHubID:  githubID,
		Login:     login,
		Email:     login + "@example.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/123",
	}
	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestGoal creates a daily-commits goal owned by userID.
func createTestGoal(t *testing.T, db *DB, userID, title string) *model.Goal {
	t.Helper()
	goal := &model.Goal{
		UserID: userID,
		Title:  title,
		TargetMetric: model.TargetMetric{
			Type:   model.MetricCommits,
			Count:  3,
			Period: model.PeriodDaily,
		},
	}
	if err := db.CreateGoal(context.Background(), goal); err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// New already ran migrate once.
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}

	for _, column := range []string{"name", "github_token"} {
		var count int
		err := db.conn.QueryRow(
			`SELECT COUNT(*) FROM pragma_table_info('users') WHERE name = ?`, column,
		).Scan(&count)
		if err != nil {
			t.Fatalf("reading users columns: %v", err)
		}
		if count != 1 {
			t.Errorf("users.%s appears %d times, want 1", column, count)
		}
	}
}
