package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// DefaultStorageTimeout bounds each store call.
const DefaultStorageTimeout = 5 * time.Second

// storageGuard runs store calls under a deadline and classifies failures.
type storageGuard struct {
	timeout time.Duration
}

// call runs fn with a bounded context. Domain errors pass through wrapped
// with op; anything else, including an expired deadline, is reported as
// domain.ErrStorageUnavailable. Cancellation by the caller is returned as is.
func (g storageGuard) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	timeout := g.timeout
	if timeout <= 0 {
		timeout = DefaultStorageTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(callCtx)
	if err == nil {
		return nil
	}
	return classifyStorageError(ctx, op, err)
}

func classifyStorageError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNoGoalSet),
		errors.Is(err, domain.ErrStorageUnavailable):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}
}
