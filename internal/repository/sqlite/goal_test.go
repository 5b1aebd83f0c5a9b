package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/mydevjourney/internal/apperror"
	"github.com/sakif/mydevjourney/internal/model"
)

func TestCreateGoal(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 1, "alice")

	goal := createTestGoal(t, db, user.ID, "Commit every day")

	if goal.ID == "" {
		t.Error("CreateGoal() did not set goal.ID")
	}
	if goal.CreatedAt.IsZero() || goal.UpdatedAt.IsZero() {
		t.Error("CreateGoal() did not set timestamps")
	}
	if goal.Status != model.GoalStatusActive {
		t.Errorf("Status = %q, want %q", goal.Status, model.GoalStatusActive)
	}

	found, err := db.GetGoal(context.Background(), user.ID, goal.ID)
	if err != nil {
		t.Fatalf("GetGoal() error = %v", err)
	}
	if found.Title != "Commit every day" {
		t.Errorf("Title = %q, want %q", found.Title, "Commit every day")
	}
	want := model.TargetMetric{Type: model.MetricCommits, Count: 3, Period: model.PeriodDaily}
	if found.TargetMetric != want {
		t.Errorf("TargetMetric = %+v, want %+v", found.TargetMetric, want)
	}
	if found.UserID != user.ID {
		t.Errorf("UserID = %q, want %q", found.UserID, user.ID)
	}
}

func TestGetGoal_OtherUsersGoalIsNotFound(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, 1, "alice")
	bob := createTestUser(t, db, 2, "bob")
	goal := createTestGoal(t, db, alice.ID, "alice's goal")

	_, err := db.GetGoal(context.Background(), bob.ID, goal.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetGoal() error = %v, want ErrNotFound", err)
	}
}

func TestListGoals_NewestFirstAndScopedToUser(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, 1, "alice")
	bob := createTestUser(t, db, 2, "bob")

	createTestGoal(t, db, alice.ID, "first")
	createTestGoal(t, db, bob.ID, "bob's")
	createTestGoal(t, db, alice.ID, "second")

	goals, err := db.ListGoals(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListGoals() error = %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("ListGoals() returned %d goals, want 2", len(goals))
	}
	if goals[0].Title != "second" || goals[1].Title != "first" {
		t.Errorf("ListGoals() order = [%q, %q], want [second, first]", goals[0].Title, goals[1].Title)
	}
}

func TestListGoals_EmptyIsNotNil(t *testing.T) {
	db := newTestDB(t)

	goals, err := db.ListGoals(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListGoals() error = %v", err)
	}
	if goals == nil {
		t.Error("ListGoals() returned nil, want empty slice")
	}
}

func TestDeleteGoal_CascadesProgress(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, 1, "alice")
	goal := createTestGoal(t, db, user.ID, "doomed")
	other := createTestGoal(t, db, user.ID, "survivor")

	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	for _, g := range []*model.Goal{goal, other} {
		if err := db.AddProgress(ctx, &model.ProgressRecord{GoalID: g.ID, Date: day, Achieved: true}); err != nil {
			t.Fatalf("AddProgress() error = %v", err)
		}
	}

	if err := db.DeleteGoal(ctx, user.ID, goal.ID); err != nil {
		t.Fatalf("DeleteGoal() error = %v", err)
	}

	if _, err := db.GetGoal(ctx, user.ID, goal.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetGoal() after delete error = %v, want ErrNotFound", err)
	}

	var orphans int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM progress WHERE goal_id = ?`, goal.ID).Scan(&orphans); err != nil {
		t.Fatalf("counting progress: %v", err)
	}
	if orphans != 0 {
		t.Errorf("%d progress rows left for deleted goal, want 0", orphans)
	}

	kept, err := db.ListProgress(ctx, []string{other.ID})
	if err != nil {
		t.Fatalf("ListProgress() error = %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("other goal has %d progress rows, want 1", len(kept))
	}
}

func TestDeleteGoal_NotFound(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, 1, "alice")
	bob := createTestUser(t, db, 2, "bob")
	goal := createTestGoal(t, db, alice.ID, "alice's goal")

	tests := []struct {
		name   string
		userID string
		goalID string
	}{
		{"unknown id", alice.ID, "does-not-exist"},
		{"someone else's goal", bob.ID, goal.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.DeleteGoal(context.Background(), tt.userID, tt.goalID)
			if !errors.Is(err, apperror.ErrNotFound) {
				t.Errorf("DeleteGoal() error = %v, want ErrNotFound", err)
			}
		})
	}

	// bob's failed attempt must not have removed alice's goal
	if _, err := db.GetGoal(context.Background(), alice.ID, goal.ID); err != nil {
		t.Errorf("GetGoal() after failed delete error = %v", err)
	}
}
