// Package tui provides the interactive progress dashboard for NutriSense.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
)

// Ports aggregates the driving ports the dashboard reads from.
type Ports struct {
	// Progress computes the day's snapshot.
	Progress driving.ProgressService

	// Intake lists the day's raw ledger entries. Optional; without it the
	// entries panel stays empty.
	Intake driving.IntakeService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Progress == nil {
		return ErrMissingProgressService
	}
	return nil
}

// Options selects whose progress is shown and where the day starts.
type Options struct {
	UserID   string
	Location *time.Location
	// Now is the clock used for "today". Defaults to time.Now.
	Now func() time.Time
}

func (o *Options) validate() error {
	if o.UserID == "" {
		return ErrMissingUser
	}
	if o.Location == nil {
		return ErrMissingLocation
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return nil
}
