// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/nutrisense/internal/adapters/driving/tui/styles"
)

// State represents the dashboard state for display.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateNoGoal  State = "no_goal"
	StateError   State = "error"
)

// Bar displays dashboard status and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	message    string
	entryCount int
	met        int
	targeted   int
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - s.styles.StatusBar.GetHorizontalPadding() - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateLoading:
		return s.styles.Muted.Render("Loading...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateNoGoal:
		if s.entryCount > 0 {
			return s.styles.Warning.Render(fmt.Sprintf("No goal for this day, %d logged", s.entryCount))
		}
		return s.styles.Warning.Render("No goal for this day")
	}
	if s.entryCount == 0 {
		return s.styles.Muted.Render("Nothing logged")
	}

	text := fmt.Sprintf("%d entries", s.entryCount)
	if s.entryCount == 1 {
		text = "1 entry"
	}
	if s.targeted == 0 {
		return s.styles.Normal.Render(text)
	}

	text += fmt.Sprintf(", %d/%d targets met", s.met, s.targeted)
	if s.met == s.targeted {
		return s.styles.Success.Render(text)
	}
	return s.styles.Normal.Render(text)
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the error message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetEntryCount sets the number of effective entries for the day.
func (s *Bar) SetEntryCount(count int) {
	s.entryCount = count
}

// SetTargets records how many of the day's targets have been reached.
func (s *Bar) SetTargets(met, targeted int) {
	s.met = met
	s.targeted = targeted
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
