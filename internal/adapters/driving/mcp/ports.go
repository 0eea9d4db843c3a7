package mcp

import (
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Goal manages nutrition goals.
	Goal driving.GoalService

	// Intake manages the food ledger.
	Intake driving.IntakeService

	// Progress computes daily snapshots.
	Progress driving.ProgressService

	// Profile manages user profiles. Optional: without it the profile tools
	// fail and timezones come from the request or the server default.
	Profile driving.ProfileService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	switch {
	case p == nil || p.Goal == nil:
		return ErrMissingGoalService
	case p.Intake == nil:
		return ErrMissingIntakeService
	case p.Progress == nil:
		return ErrMissingProgressService
	}
	return nil
}
