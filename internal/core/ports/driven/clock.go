package driven

import "time"

// Clock supplies the current time. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}
