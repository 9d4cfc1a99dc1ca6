package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnresolvablePeriod marks an invoice date that cannot be mapped to an
// accounting period. Callers log and skip; it is never fatal.
var ErrUnresolvablePeriod = errors.New("unresolvable_period")

// Period identifies one calendar month, normalized to its first day at UTC
// midnight. Two periods are equal iff they share year and month.
type Period struct {
	start time.Time
}

// NewPeriod builds a period from year and month.
func NewPeriod(year int, month time.Month) Period {
	return Period{start: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// PeriodOf normalizes any timestamp to its containing period.
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return NewPeriod(t.Year(), t.Month())
}

// ParsePeriod parses the "2006-01" wire form used by the HTTP API.
func ParsePeriod(value string) (Period, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrUnresolvablePeriod, value)
	}
	return PeriodOf(t), nil
}

// Start returns the first day of the month, UTC midnight.
func (p Period) Start() time.Time { return p.start }

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool { return p.start.IsZero() }

// Equal reports year+month equality.
func (p Period) Equal(other Period) bool { return p.start.Equal(other.start) }

// String renders the period key, e.g. "2024-03".
func (p Period) String() string { return p.start.Format("2006-01") }

// PeriodBounds rejects dates far enough outside the expected range that they
// are more likely corrupted input than real invoices.
type PeriodBounds struct {
	MinYear      int
	MaxYearAhead int
}

// DefaultPeriodBounds accepts years 2000 through five years past now.
func DefaultPeriodBounds() PeriodBounds {
	return PeriodBounds{MinYear: 2000, MaxYearAhead: 5}
}

func (b PeriodBounds) withDefaults() PeriodBounds {
	defaults := DefaultPeriodBounds()
	if b.MinYear <= 0 {
		b.MinYear = defaults.MinYear
	}
	if b.MaxYearAhead <= 0 {
		b.MaxYearAhead = defaults.MaxYearAhead
	}
	return b
}

// ResolvePeriod maps an invoice date to its accounting period. A zero date or
// a year outside the configured bounds yields ErrUnresolvablePeriod.
func ResolvePeriod(date time.Time, now time.Time, bounds PeriodBounds) (Period, error) {
	if date.IsZero() {
		return Period{}, fmt.Errorf("%w: zero date", ErrUnresolvablePeriod)
	}
	bounds = bounds.withDefaults()
	year := date.UTC().Year()
	if year < bounds.MinYear {
		return Period{}, fmt.Errorf("%w: year %d before %d", ErrUnresolvablePeriod, year, bounds.MinYear)
	}
	if maxYear := now.UTC().Year() + bounds.MaxYearAhead; year > maxYear {
		return Period{}, fmt.Errorf("%w: year %d after %d", ErrUnresolvablePeriod, year, maxYear)
	}
	return PeriodOf(date), nil
}
