package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/nutrisense/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
)

// testClock is a settable clock.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Set(t time.Time) { c.now = t }

type testEnv struct {
	clock    *testClock
	goals    *memory.GoalStore
	logs     *memory.FoodLogStore
	profiles *memory.ProfileStore
	goal     *GoalService
	intake   *IntakeService
	progress *ProgressService
	profile  *ProfileService
}

func newTestEnv(now time.Time) *testEnv {
	env := &testEnv{
		clock:    &testClock{now: now},
		goals:    memory.NewGoalStore(),
		logs:     memory.NewFoodLogStore(),
		profiles: memory.NewProfileStore(),
	}
	locks := NewUserLocks()
	env.goal = NewGoalService(env.goals, locks, env.clock)
	env.intake = NewIntakeService(env.logs, locks, env.clock)
	env.progress = NewProgressService(env.goals, env.logs, locks)
	env.profile = NewProfileService(env.profiles, locks, env.clock)
	return env
}

var errDiskGone = errors.New("disk gone")

// failingGoalStore fails every call.
type failingGoalStore struct{}

var _ driven.GoalStore = failingGoalStore{}

func (failingGoalStore) Append(context.Context, domain.Goal) error { return errDiskGone }

func (failingGoalStore) ActiveAt(context.Context, string, time.Time) (*domain.Goal, error) {
	return nil, errDiskGone
}

func (failingGoalStore) FirstIn(context.Context, string, time.Time, time.Time) (*domain.Goal, error) {
	return nil, errDiskGone
}

func (failingGoalStore) List(context.Context, string) ([]domain.Goal, error) { return nil, errDiskGone }

// hangingFoodLogStore blocks until the context is done.
type hangingFoodLogStore struct {
	*memory.FoodLogStore
}

func (s hangingFoodLogStore) Range(ctx context.Context, _ string, _, _ time.Time) ([]domain.FoodLogEntry, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func utc(y int, m time.Month, d, h, min, s int) time.Time {
	return time.Date(y, m, d, h, min, s, 0, time.UTC)
}
