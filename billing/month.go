package billing

import (
	"fmt"
	"time"
)

// =============================================================================
// MONTH - Calendar year-month (the engine's only time granularity)
// =============================================================================

// Month is a calendar year-month. Monthly tuition fees are due for a
// Month, and overdue detection compares fee months against an explicit
// asOf Month supplied by the caller. There is no hidden clock anywhere in
// the engine; callers inject "now" so every computation is deterministic.
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth creates a Month from a year and month.
func NewMonth(year int, month time.Month) Month {
	return Month{Year: year, Month: month}
}

// ParseMonth parses the "2006-01" wire format used by fee months.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the Month containing the given time. Callers use this
// to turn their wall clock into an explicit asOf before entering the engine.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) index() int { return m.Year*12 + int(m.Month) - 1 }

// Comparison
func (m Month) Before(other Month) bool { return m.index() < other.index() }
func (m Month) After(other Month) bool  { return m.index() > other.index() }
func (m Month) Equal(other Month) bool  { return m.index() == other.index() }

// AddMonths returns the Month n months later (or earlier for negative n).
func (m Month) AddMonths(n int) Month {
	i := m.index() + n
	y, mo := i/12, i%12
	if mo < 0 {
		y, mo = y-1, mo+12
	}
	return Month{Year: y, Month: time.Month(mo + 1)}
}

// IsZero reports whether the Month is the zero value.
func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
