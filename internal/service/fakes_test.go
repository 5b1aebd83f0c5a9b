package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sakif/mydevjourney/internal/apperror"
	"github.com/sakif/mydevjourney/internal/model"
	"github.com/sakif/mydevjourney/internal/repository"
)

// fakeGoalStore is an in-memory GoalRepository and ProgressRepository.
// InsightService reads it from an errgroup goroutine, hence the mutex.
type fakeGoalStore struct {
	mu       sync.Mutex
	goals    []model.Goal // insertion order
	progress []model.ProgressRecord
	nextID   int

	// set to a non-nil error to simulate a database failure
	listErr error
	addErr  error
}

var (
	_ repository.GoalRepository     = (*fakeGoalStore)(nil)
	_ repository.ProgressRepository = (*fakeGoalStore)(nil)
)

func newFakeGoalStore() *fakeGoalStore {
	return &fakeGoalStore{}
}

func (f *fakeGoalStore) CreateGoal(_ context.Context, goal *model.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	goal.ID = fmt.Sprintf("goal-%d", f.nextID)
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = goal.CreatedAt
	f.goals = append(f.goals, *goal)
	return nil
}

func (f *fakeGoalStore) GetGoal(_ context.Context, userID, goalID string) (*model.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.goals {
		if g.ID == goalID && g.UserID == userID {
			found := g
			return &found, nil
		}
	}
	return nil, apperror.NotFound("goal", goalID)
}

func (f *fakeGoalStore) ListGoals(_ context.Context, userID string) ([]model.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Goal{}
	for i := len(f.goals) - 1; i >= 0; i-- { // newest first
		if f.goals[i].UserID == userID {
			out = append(out, f.goals[i])
		}
	}
	return out, nil
}

func (f *fakeGoalStore) DeleteGoal(_ context.Context, userID, goalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, g := range f.goals {
		if g.ID == goalID && g.UserID == userID {
			f.goals = append(f.goals[:i], f.goals[i+1:]...)
			kept := f.progress[:0]
			for _, p := range f.progress {
				if p.GoalID != goalID {
					kept = append(kept, p)
				}
			}
			f.progress = kept
			return nil
		}
	}
	return apperror.NotFound("goal", goalID)
}

func (f *fakeGoalStore) AddProgress(_ context.Context, record *model.ProgressRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.nextID++
	record.ID = fmt.Sprintf("progress-%d", f.nextID)
	f.progress = append(f.progress, *record)
	return nil
}

func (f *fakeGoalStore) ListProgress(_ context.Context, goalIDs []string) ([]model.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range goalIDs {
		want[id] = true
	}
	out := []model.ProgressRecord{}
	for _, p := range f.progress {
		if want[p.GoalID] {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// mockFetcher is a testify mock of gateway.ActivityFetcher.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchEvents(ctx context.Context, token string, limit int) ([]model.RawActivityEvent, error) {
	args := m.Called(ctx, token, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawActivityEvent), args.Error(1)
}

// fixedClock returns a Clock stuck at t.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func intp(n int) *int { return &n }
