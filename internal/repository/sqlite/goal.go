package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/mydevjourney/internal/apperror"
	"github.com/sakif/mydevjourney/internal/model"
	"github.com/sakif/mydevjourney/internal/repository"
)

var _ repository.GoalRepository = (*DB)(nil)

const goalColumns = `id, user_id, title, description, target_type, target_count, target_period, status, created_at, updated_at`

// CreateGoal inserts a new goal. ID and timestamps are generated here and
// written back into goal; an empty Status is stored as active.
func (db *DB) CreateGoal(ctx context.Context, goal *model.Goal) error {
	now := time.Now().UTC()
	goal.ID = xid.New().String()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	if goal.Status == "" {
		goal.Status = model.GoalStatusActive
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.TargetMetric.Type,
		goal.TargetMetric.Count,
		goal.TargetMetric.Period,
		goal.Status,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting goal: %w", err)
	}
	return nil
}

// GetGoal returns one of userID's goals. A goal owned by someone else is
// reported as not found so callers cannot probe other users' IDs.
func (db *DB) GetGoal(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`,
		goalID, userID,
	)

	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("goal", goalID)
		}
		return nil, fmt.Errorf("sqlite: getting goal %s: %w", goalID, err)
	}
	return g, nil
}

// ListGoals returns every goal of userID, newest first.
func (db *DB) ListGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing goals: %w", err)
	}
	defer rows.Close()

	goals := []model.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning goal: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating goals: %w", err)
	}
	return goals, nil
}

// DeleteGoal removes a goal and its progress records in one transaction.
//
// Progress is deleted explicitly: foreign_keys is a per-connection PRAGMA and
// the pool may hand us a connection that never ran it.
func (db *DB) DeleteGoal(ctx context.Context, userID, goalID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete of goal %s: %w", goalID, err)
	}
	// Rollback after Commit is a no-op, so deferring it is always safe.
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM progress
		 WHERE goal_id IN (SELECT id FROM goals WHERE id = ? AND user_id = ?)`,
		goalID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting progress of goal %s: %w", goalID, err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`,
		goalID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting goal %s: %w", goalID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("goal", goalID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of goal %s: %w", goalID, err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(s scanner) (*model.Goal, error) {
	var g model.Goal
	err := s.Scan(
		&g.ID,
		&g.UserID,
		&g.Title,
		&g.Description,
		&g.TargetMetric.Type,
		&g.TargetMetric.Count,
		&g.TargetMetric.Period,
		&g.Status,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
