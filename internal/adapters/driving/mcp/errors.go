// Package mcp provides an MCP (Model Context Protocol) server adapter for NutriSense.
// It lets AI assistants set goals, log food and read progress through tool calls.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

var (
	// ErrMissingGoalService is returned when the goal service is not provided.
	ErrMissingGoalService = errors.New("mcp: goal service is required")

	// ErrMissingIntakeService is returned when the intake service is not provided.
	ErrMissingIntakeService = errors.New("mcp: intake service is required")

	// ErrMissingProgressService is returned when the progress service is not provided.
	ErrMissingProgressService = errors.New("mcp: progress service is required")

	// ErrProfileUnavailable is returned by profile tools when no profile
	// service is wired.
	ErrProfileUnavailable = errors.New("profile service not configured")
)

// toolError prefixes err with its domain kind so the assistant can tell a
// bad request from a retryable outage.
func toolError(err error) error {
	return fmt.Errorf("%s: %w", domain.Kind(err), err)
}
