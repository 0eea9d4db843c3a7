package domain

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the wire format for Date.
const DateLayout = "2006-01-02"

// Date is a calendar day with no zone attached. The zone is supplied
// separately when a Date is turned into a time window.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, NewValidationError("date", fmt.Sprintf("%q is not a YYYY-MM-DD date", s))
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.midday().Before(other.midday())
}

// DaysUntil returns the number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.midday().Sub(d.midday()).Hours() / 24)
}

func (d Date) midday() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

// DayWindow is the half-open interval [Start, End) covering one calendar day
// in a specific location.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// Window resolves d in loc to [d 00:00, d+1 00:00). Calendar arithmetic is
// used, so days crossing a DST change last 23 or 25 hours.
func (d Date) Window(loc *time.Location) DayWindow {
	return DayWindow{
		Start: time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc),
		End:   time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, loc),
	}
}

// Contains reports whether t lies in [Start, End).
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Instants a store can hold: the span of int64 Unix nanoseconds, roughly
// 1677-09-21 to 2262-04-11 UTC.
var (
	MinInstant = time.Unix(0, math.MinInt64).UTC()
	MaxInstant = time.Unix(0, math.MaxInt64).UTC()
)

// ValidateInstant rejects instants outside [MinInstant, MaxInstant].
func ValidateInstant(field string, t time.Time) error {
	if t.Before(MinInstant) || t.After(MaxInstant) {
		return NewValidationError(field, fmt.Sprintf("%s is outside the supported range %s to %s",
			t.UTC().Format(time.RFC3339), MinInstant.Format(DateLayout), MaxInstant.Format(DateLayout)))
	}
	return nil
}
