package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/nutrisense/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
)

func newTestApp(t *testing.T, svc *testServices) *App {
	t.Helper()
	app, err := NewApp(svc.ports(), Options{
		UserID:   "u1",
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	app.SetDimensions(120, 40)
	return app
}

// run executes cmd and feeds its message back into the app.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	app.Update(cmd())
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func seed(t *testing.T, svc *testServices) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.goal.SetGoal(ctx, "u1", domain.NutrientVector{"calories": 2000, "protein": 100})
	require.NoError(t, err)
	_, err = svc.intake.LogFood(ctx, driving.LogFoodRequest{
		UserID:    "u1",
		Nutrients: domain.NutrientVector{"calories": 800, "protein": 30},
		MealLabel: "lunch",
	})
	require.NoError(t, err)
}

func TestNewApp_Success(t *testing.T) {
	app := newTestApp(t, newTestServices())

	assert.Equal(t, domain.Date{Year: 2024, Month: time.May, Day: 4}, app.Day())
	assert.Nil(t, app.Snapshot())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{}, Options{UserID: "u1", Location: time.UTC})

	assert.ErrorIs(t, err, ErrMissingProgressService)
	assert.Nil(t, app)
}

func TestNewApp_InvalidOptions(t *testing.T) {
	app, err := NewApp(newTestServices().ports(), Options{Location: time.UTC})

	assert.ErrorIs(t, err, ErrMissingUser)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t, newTestServices())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t, newTestServices())

	assert.NotNil(t, app.Init())
	assert.Equal(t, status.StateLoading, app.status.State())
}

func TestApp_LoadsSnapshot(t *testing.T) {
	svc := newTestServices()
	seed(t, svc)
	app := newTestApp(t, svc)

	run(t, app, app.loadSnapshot())

	require.NoError(t, app.Err())
	require.NotNil(t, app.Snapshot())
	assert.InDelta(t, 800, app.Snapshot().Consumed["calories"], 1e-9)
	assert.Equal(t, status.StateReady, app.status.State())

	view := app.View()
	assert.Contains(t, view, "calories")
	assert.Contains(t, view, "800 / 2000")
	assert.Contains(t, view, "40%")
	assert.Contains(t, view, "1200 left")
	assert.Contains(t, view, "(today)")
	assert.Contains(t, view, "0/2 targets met")
}

func TestApp_NoGoalFallsBackToIntake(t *testing.T) {
	svc := newTestServices()
	_, err := svc.intake.LogFood(context.Background(), driving.LogFoodRequest{
		UserID:    "u1",
		Nutrients: domain.NutrientVector{"calories": 300},
	})
	require.NoError(t, err)
	app := newTestApp(t, svc)

	run(t, app, app.loadSnapshot())

	require.NoError(t, app.Err())
	assert.Nil(t, app.Snapshot())
	require.NotNil(t, app.Summary())
	assert.Equal(t, 1, app.Summary().EntryCount)
	assert.Equal(t, status.StateNoGoal, app.status.State())
	assert.Contains(t, app.View(), "No goal set for this day")
	assert.Contains(t, app.View(), "300")
}

func TestApp_NavigatesDays(t *testing.T) {
	svc := newTestServices()
	seed(t, svc)
	app := newTestApp(t, svc)
	run(t, app, app.loadSnapshot())

	_, cmd := app.Update(keyPress('h'))
	assert.Equal(t, domain.Date{Year: 2024, Month: time.May, Day: 3}, app.Day())
	assert.Nil(t, app.Snapshot(), "previous day's snapshot is cleared")
	run(t, app, cmd)

	// The goal was created on the 4th, so the 3rd has none.
	assert.Nil(t, app.Snapshot())
	require.NotNil(t, app.Summary())
	assert.Equal(t, 0, app.Summary().EntryCount)
	assert.NotContains(t, app.View(), "(today)")

	_, cmd = app.Update(keyPress('t'))
	assert.Equal(t, domain.Date{Year: 2024, Month: time.May, Day: 4}, app.Day())
	run(t, app, cmd)
	assert.NotNil(t, app.Snapshot())

	app.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, domain.Date{Year: 2024, Month: time.May, Day: 5}, app.Day())
}

func TestApp_DropsStaleLoads(t *testing.T) {
	svc := newTestServices()
	seed(t, svc)
	app := newTestApp(t, svc)

	stale := app.loadSnapshot()
	app.Update(keyPress('h'))
	app.Update(stale())

	assert.Nil(t, app.Snapshot())
	assert.Equal(t, status.StateLoading, app.status.State())
}

func TestApp_ToggleEntries(t *testing.T) {
	svc := newTestServices()
	seed(t, svc)
	app := newTestApp(t, svc)

	_, cmd := app.Update(keyPress('e'))
	run(t, app, cmd)

	require.Len(t, app.Entries(), 1)
	view := app.View()
	assert.Contains(t, view, "Ledger")
	assert.Contains(t, view, "12:00")
	assert.Contains(t, view, "lunch")
	assert.Contains(t, view, "calories=800")

	_, cmd = app.Update(keyPress('e'))
	assert.Nil(t, cmd)
	assert.NotContains(t, app.View(), "Ledger")
}

func TestApp_EntriesShowCorrectionsAndVoids(t *testing.T) {
	svc := newTestServices()
	ctx := context.Background()
	first, err := svc.intake.LogFood(ctx, driving.LogFoodRequest{UserID: "u1", Nutrients: domain.NutrientVector{"calories": 100}})
	require.NoError(t, err)
	fixed, err := svc.intake.Correct(ctx, driving.CorrectionRequest{UserID: "u1", EntryID: first.ID, Nutrients: domain.NutrientVector{"calories": 150}})
	require.NoError(t, err)
	_, err = svc.intake.Void(ctx, "u1", fixed.ID, "duplicate")
	require.NoError(t, err)

	app := newTestApp(t, svc)
	_, cmd := app.Update(keyPress('e'))
	run(t, app, cmd)

	require.Len(t, app.Entries(), 3)
	view := app.View()
	assert.Contains(t, view, "(corrects "+first.ID+")")
	assert.Contains(t, view, "void "+fixed.ID)
}

func TestApp_EntriesWithoutIntakeService(t *testing.T) {
	svc := newTestServices()
	app, err := NewApp(&Ports{Progress: svc.progress}, Options{UserID: "u1", Location: time.UTC})
	require.NoError(t, err)

	_, cmd := app.Update(keyPress('e'))

	assert.Nil(t, cmd)
	assert.Contains(t, app.View(), "No entries")
}

func TestApp_LoadError(t *testing.T) {
	app := newTestApp(t, newTestServices())

	app.Update(messages.SnapshotLoaded{Day: app.Day(), Err: errors.New("disk on fire")})

	assert.Error(t, app.Err())
	assert.Equal(t, status.StateError, app.status.State())
	assert.Contains(t, app.View(), "disk on fire")
}

func TestApp_Refresh(t *testing.T) {
	svc := newTestServices()
	seed(t, svc)
	app := newTestApp(t, svc)
	run(t, app, app.loadSnapshot())

	_, err := svc.intake.LogFood(context.Background(), driving.LogFoodRequest{
		UserID:    "u1",
		Nutrients: domain.NutrientVector{"calories": 200},
	})
	require.NoError(t, err)

	_, cmd := app.Update(keyPress('r'))
	run(t, app, cmd)

	assert.InDelta(t, 1000, app.Snapshot().Consumed["calories"], 1e-9)
}

func TestApp_HelpAndQuit(t *testing.T) {
	app := newTestApp(t, newTestServices())

	app.Update(keyPress('?'))
	assert.True(t, app.help.ShowAll)
	assert.Contains(t, app.View(), "refresh")

	_, cmd := app.Update(keyPress('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_WindowSize(t *testing.T) {
	app := newTestApp(t, newTestServices())

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Equal(t, 100, app.width)
	assert.Equal(t, 100, app.status.Width())
}
