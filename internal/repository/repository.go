// Package repository declares the storage interfaces the service layer
// depends on. Implementations live in sub-packages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/mydevjourney/internal/model"
)

// UserRepository reads and writes user accounts.
type UserRepository interface {
	// Upsert inserts or updates a user keyed by GitHub ID and fills in
	// ID, CreatedAt and UpdatedAt on the passed struct.
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// GoalRepository stores goals. Every method is scoped to one user.
type GoalRepository interface {
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, userID, goalID string) (*model.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]model.Goal, error)
	// DeleteGoal removes the goal and all of its progress records.
	DeleteGoal(ctx context.Context, userID, goalID string) error
}

// ProgressRepository stores progress records.
type ProgressRepository interface {
	AddProgress(ctx context.Context, record *model.ProgressRecord) error
	// ListProgress returns the progress of the given goals, newest date first.
	ListProgress(ctx context.Context, goalIDs []string) ([]model.ProgressRecord, error)
}
