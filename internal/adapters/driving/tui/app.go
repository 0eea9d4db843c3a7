package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/nutrisense/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/nutrisense/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/nutrisense/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

const barWidth = 30

// App is the progress dashboard following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	opts  Options
	ctx   context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap
	status *status.Bar
	help   help.Model
	bar    progress.Model

	// day is the calendar day on screen.
	day domain.Date

	snapshot    *domain.ProgressSnapshot
	summary     *domain.IntakeSummary
	entries     []domain.FoodLogEntry
	showEntries bool
	err         error

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the dashboard for opts.UserID, starting on today's date in
// opts.Location.
func NewApp(ports *Ports, opts Options) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:  ports,
		opts:   opts,
		ctx:    context.Background(),
		styles: s,
		keymap: km,
		status: status.NewBar(s, km),
		help:   help.New(),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
	}
	a.day = a.today()
	return a, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("nutrisense"),
		a.reload(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case messages.SnapshotLoaded:
		// A slow load for a day the user already left is dropped.
		if msg.Day != a.day {
			return a, nil
		}
		a.applySnapshot(msg)
		return a, nil

	case messages.EntriesLoaded:
		if msg.Day != a.day {
			return a, nil
		}
		if msg.Err != nil {
			a.err = msg.Err
			a.status.SetState(status.StateError)
			a.status.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.entries = msg.Entries
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		return tea.Quit
	case key.Matches(msg, a.keymap.Help):
		a.help.ShowAll = !a.help.ShowAll
		return nil
	case key.Matches(msg, a.keymap.PrevDay):
		return a.goTo(a.day.AddDays(-1))
	case key.Matches(msg, a.keymap.NextDay):
		return a.goTo(a.day.AddDays(1))
	case key.Matches(msg, a.keymap.Today):
		return a.goTo(a.today())
	case key.Matches(msg, a.keymap.Refresh):
		return a.reload()
	case key.Matches(msg, a.keymap.ToggleEntries):
		a.showEntries = !a.showEntries
		if a.showEntries {
			return a.loadEntries()
		}
	}
	return nil
}

func (a *App) goTo(day domain.Date) tea.Cmd {
	a.day = day
	a.snapshot = nil
	a.summary = nil
	a.entries = nil
	return a.reload()
}

func (a *App) reload() tea.Cmd {
	a.err = nil
	a.status.SetState(status.StateLoading)
	a.status.SetMessage("")
	if a.showEntries {
		return tea.Batch(a.loadSnapshot(), a.loadEntries())
	}
	return a.loadSnapshot()
}

func (a *App) applySnapshot(msg messages.SnapshotLoaded) {
	a.snapshot = msg.Snapshot
	a.summary = msg.Summary
	a.err = msg.Err

	switch {
	case msg.Err != nil:
		a.status.SetState(status.StateError)
		a.status.SetMessage(msg.Err.Error())
		a.status.SetEntryCount(0)
	case msg.NoGoal:
		a.status.SetState(status.StateNoGoal)
		a.status.SetEntryCount(msg.Summary.EntryCount)
		a.status.SetTargets(0, 0)
	default:
		a.status.SetState(status.StateReady)
		a.status.SetEntryCount(msg.Snapshot.EntryCount)
		a.status.SetTargets(msg.Snapshot.TargetsMet())
	}
}

// loadSnapshot computes the day's progress, falling back to the bare intake
// when no goal applies.
func (a *App) loadSnapshot() tea.Cmd {
	ctx, svc := a.ctx, a.ports.Progress
	userID, day, loc := a.opts.UserID, a.day, a.opts.Location

	return func() tea.Msg {
		snapshot, err := svc.ComputeProgress(ctx, userID, day, loc)
		if errors.Is(err, domain.ErrNoGoalSet) {
			summary, err := svc.DailyIntake(ctx, userID, day, loc)
			if err != nil {
				return messages.SnapshotLoaded{Day: day, Err: err}
			}
			return messages.SnapshotLoaded{Day: day, Summary: summary, NoGoal: true}
		}
		if err != nil {
			return messages.SnapshotLoaded{Day: day, Err: err}
		}
		return messages.SnapshotLoaded{Day: day, Snapshot: snapshot}
	}
}

func (a *App) loadEntries() tea.Cmd {
	if a.ports.Intake == nil {
		return nil
	}
	ctx, svc := a.ctx, a.ports.Intake
	userID, day := a.opts.UserID, a.day
	window := day.Window(a.opts.Location)

	return func() tea.Msg {
		entries, err := svc.QueryRange(ctx, userID, window.Start, window.End)
		return messages.EntriesLoaded{Day: day, Entries: entries, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("NutriSense"))
	b.WriteString("  ")
	b.WriteString(a.styles.Subtitle.Render(a.heading()))
	b.WriteString("\n\n")

	switch {
	case a.err != nil:
		b.WriteString(a.styles.Error.Render("Error: " + a.err.Error()))
		b.WriteString("\n")
	case a.snapshot != nil:
		b.WriteString(a.styles.Muted.Render("goal " + a.snapshot.Goal.ID))
		b.WriteString("\n\n")
		b.WriteString(a.renderRows(a.snapshot.Rows()))
	case a.summary != nil:
		b.WriteString(a.styles.Warning.Render("No goal set for this day"))
		b.WriteString("\n\n")
		b.WriteString(a.renderRows(summaryRows(a.summary)))
	default:
		b.WriteString(a.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	}

	if a.showEntries {
		b.WriteString("\n")
		b.WriteString(a.renderEntries())
	}

	if a.help.ShowAll {
		b.WriteString("\n")
		b.WriteString(a.help.View(a.keymap))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.status.View())
	return b.String()
}

func (a *App) heading() string {
	label := a.day.String()
	if a.day == a.today() {
		label += " (today)"
	}
	return fmt.Sprintf("%s  %s", label, a.opts.Location.String())
}

func (a *App) renderRows(rows []domain.NutrientProgress) string {
	if len(rows) == 0 {
		return a.styles.Muted.Render("Nothing logged") + "\n"
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(a.styles.Label.Render(r.Nutrient))

		style := a.styles.ForPercent(r.Percent, r.PercentDefined)
		if r.PercentDefined {
			b.WriteString(a.bar.ViewAs(min(r.Percent, 1)))
			b.WriteString("  ")
			b.WriteString(style.Render(fmt.Sprintf("%s / %s  %s",
				present.FormatAmount(r.Consumed),
				present.FormatAmount(r.Target),
				present.FormatPercent(r.Percent))))
			b.WriteString(a.styles.Muted.Render(fmt.Sprintf("  %s left", present.FormatAmount(r.Remaining))))
		} else {
			b.WriteString(lipgloss.NewStyle().Width(barWidth).Render(""))
			b.WriteString("  ")
			text := present.FormatAmount(r.Consumed)
			if r.HasTarget {
				text += " / " + present.FormatAmount(r.Target)
			}
			b.WriteString(style.Render(text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderEntries() string {
	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render("Ledger"))
	b.WriteString("\n")
	if len(a.entries) == 0 {
		b.WriteString(a.styles.Muted.Render("No entries"))
		b.WriteString("\n")
		return b.String()
	}

	for i := range a.entries {
		e := &a.entries[i]
		at := e.LoggedAt.In(a.opts.Location).Format("15:04")
		if e.IsVoid() {
			b.WriteString(a.styles.Muted.Render(fmt.Sprintf("%s  void %s", at, e.Supersedes)))
			b.WriteString("\n")
			continue
		}

		meal := e.MealLabel
		if meal == "" {
			meal = "-"
		}
		parts := make([]string, 0, len(e.Nutrients))
		for _, n := range e.Nutrients.Keys() {
			parts = append(parts, n+"="+present.FormatAmount(e.Nutrients[n]))
		}
		line := fmt.Sprintf("%s  %-10s %s", at, meal, strings.Join(parts, " "))
		if e.Supersedes != "" {
			line += "  (corrects " + e.Supersedes + ")"
		}
		b.WriteString(a.styles.Normal.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// summaryRows lists consumed nutrients without targets.
func summaryRows(s *domain.IntakeSummary) []domain.NutrientProgress {
	keys := s.Consumed.Keys()
	rows := make([]domain.NutrientProgress, 0, len(keys))
	for _, n := range keys {
		rows = append(rows, domain.NutrientProgress{Nutrient: n, Consumed: s.Consumed[n]})
	}
	return rows
}

func (a *App) today() domain.Date {
	return domain.DateOf(a.opts.Now().In(a.opts.Location))
}

// Run starts the dashboard on the alternate screen.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Day returns the calendar day on screen.
func (a *App) Day() domain.Date {
	return a.day
}

// Snapshot returns the loaded snapshot, nil when none or no goal applies.
func (a *App) Snapshot() *domain.ProgressSnapshot {
	return a.snapshot
}

// Summary returns the bare intake loaded for a day without a goal.
func (a *App) Summary() *domain.IntakeSummary {
	return a.summary
}

// Entries returns the loaded ledger entries.
func (a *App) Entries() []domain.FoodLogEntry {
	return a.entries
}

// Err returns the last load error.
func (a *App) Err() error {
	return a.err
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.status.SetWidth(width)
	a.help.Width = width
}
