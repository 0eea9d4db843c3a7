package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/nutrisense/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
	"github.com/custodia-labs/nutrisense/internal/core/services"
)

// testNow is noon UTC on 4 May 2024.
var testNow = time.Date(2024, time.May, 4, 12, 0, 0, 0, time.UTC)

// newTestPorts wires real services over memory stores.
func newTestPorts() *Ports {
	locks := services.NewUserLocks()
	clock := services.FixedClock{T: testNow}
	goals := memory.NewGoalStore()
	logs := memory.NewFoodLogStore()

	return &Ports{
		Goal:     services.NewGoalService(goals, locks, clock),
		Intake:   services.NewIntakeService(logs, locks, clock),
		Progress: services.NewProgressService(goals, logs, locks),
		Profile:  services.NewProfileService(memory.NewProfileStore(), locks, clock),
	}
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	s, err := NewServer(newTestPorts(), opts...)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

// mockGoalService is a mock implementation of driving.GoalService.
type mockGoalService struct {
	goal  *domain.Goal
	goals []domain.Goal
	err   error
}

var _ driving.GoalService = (*mockGoalService)(nil)

func (m *mockGoalService) SetGoal(context.Context, string, domain.NutrientVector) (*domain.Goal, error) {
	return m.goal, m.err
}

func (m *mockGoalService) UpdateGoal(context.Context, string, domain.NutrientVector) (*domain.Goal, error) {
	return m.goal, m.err
}

func (m *mockGoalService) ActiveGoal(context.Context, string, time.Time) (*domain.Goal, error) {
	return m.goal, m.err
}

func (m *mockGoalService) History(context.Context, string) ([]domain.Goal, error) {
	return m.goals, m.err
}
