package timex

import "time"

// DateLayout is the calendar date format used for open dates.
const DateLayout = "2006-01-02"

// Clock abstracts the wall clock so decisions can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// UnixMilli returns t as milliseconds since the Unix epoch.
func UnixMilli(t time.Time) int64 {
	return t.UnixMilli()
}

// FromUnixMilli converts epoch milliseconds back to a time.Time in UTC.
func FromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ShiftByOffset returns the wall clock of a zone whose offset follows the
// JavaScript getTimezoneOffset convention: minutes the zone is behind UTC,
// positive west of Greenwich. An offset of 300 (UTC-5) moves 12:00Z to 07:00.
func ShiftByOffset(now time.Time, offsetMinutes int) time.Time {
	return now.UTC().Add(-time.Duration(offsetMinutes) * time.Minute)
}

// MinuteOfDay returns hour*60+minute of t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ParseDate parses a YYYY-MM-DD calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// DateOf truncates t to midnight of its calendar date in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
