package streak

import (
	"database/sql"
	"time"
	_ "time/tzdata"

	"github.com/puzpuzpuz/xsync"

	mathUtil "github.com/pkg/math"
)

const dayLayout = "2006-01-02"

// Increase returns the streak after a qualifying completion.
func Increase(current, longest int) (int, int) {
	current = mathUtil.MaxInt(current, 0) + 1
	return current, mathUtil.MaxInt(longest, current)
}

// Decrease returns the streak after a revert or a bad action. The longest
// streak is never reduced.
func Decrease(current, longest int) (int, int) {
	current = mathUtil.MaxInt(current-1, 0)
	return current, mathUtil.MaxInt(longest, current)
}

type DayStatus int

const (
	// NeverCompleted is the status of a daily without any completion.
	NeverCompleted DayStatus = iota
	// CompletedToday means the last completion happened in the current day.
	CompletedToday
	// CompletedYesterday keeps the streak alive but opens a new day.
	CompletedYesterday
	// Missed means at least one whole day passed without a completion.
	Missed
)

// Tracker computes calendar days in the timezone of a user. Locations are
// loaded once and cached.
type Tracker struct {
	defaultTimezone string
	locations       *xsync.MapOf[string, *time.Location]
}

func NewTracker(defaultTimezone string) *Tracker {
	return &Tracker{
		defaultTimezone: defaultTimezone,
		locations:       xsync.NewMapOf[*time.Location](),
	}
}

// Location returns the location of the given IANA name. An empty or unknown
// name falls back to the default timezone, then to UTC.
func (t *Tracker) Location(timezone string) *time.Location {
	if timezone == "" {
		timezone = t.defaultTimezone
	}

	if loc, ok := t.locations.Load(timezone); ok {
		return loc
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		if timezone != t.defaultTimezone {
			return t.Location(t.defaultTimezone)
		}
		loc = time.UTC
	}

	t.locations.Store(timezone, loc)
	return loc
}

// Day returns the calendar day of at in the timezone, formatted YYYY-MM-DD.
func (t *Tracker) Day(at time.Time, timezone string) string {
	return at.In(t.Location(timezone)).Format(dayLayout)
}

// DaysBetween returns how many calendar days in the timezone separate from
// and to. It is negative if to is a day before from.
func (t *Tracker) DaysBetween(from, to time.Time, timezone string) int {
	loc := t.Location(timezone)
	return int(midnight(to.In(loc)).Sub(midnight(from.In(loc))).Hours() / 24)
}

// Status classifies the last completion of a daily relatively to now.
func (t *Tracker) Status(lastCompletedAt sql.NullTime, now time.Time, timezone string) DayStatus {
	if !lastCompletedAt.Valid {
		return NeverCompleted
	}

	switch days := t.DaysBetween(lastCompletedAt.Time, now, timezone); {
	case days <= 0:
		return CompletedToday
	case days == 1:
		return CompletedYesterday
	default:
		return Missed
	}
}

// midnight maps the calendar day of t onto a UTC date, so that the difference
// of two days is always a multiple of 24 hours regardless of DST.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
