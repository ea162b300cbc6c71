package timeutil

import (
	"errors"
	"time"
)

// WIB is Western Indonesia Time (UTC+7), the business timezone
var WIB *time.Location

func init() {
	var err error
	WIB, err = time.LoadLocation("Asia/Jakarta")
	if err != nil {
		// Fallback: create fixed zone if tzdata is not available
		WIB = time.FixedZone("WIB", 7*60*60)
	}
}

// Now returns the current time in WIB
func Now() time.Time {
	return time.Now().In(WIB)
}

// FormatWIB formats a time in WIB using the given layout
func FormatWIB(t time.Time, layout string) string {
	return t.In(WIB).Format(layout)
}

// StartOfDay returns 00:00:00 in WIB for the given time
func StartOfDay(t time.Time) time.Time {
	w := t.In(WIB)
	return time.Date(w.Year(), w.Month(), w.Day(), 0, 0, 0, 0, WIB)
}

// EndOfDay returns the last instant of the day in WIB for the given time
func EndOfDay(t time.Time) time.Time {
	w := t.In(WIB)
	return time.Date(w.Year(), w.Month(), w.Day(), 23, 59, 59, 999999999, WIB)
}

var ErrBadDate = errors.New("date must be RFC3339 or YYYY-MM-DD")

// ParseDateOrTime accepts an RFC3339 timestamp or a bare date. dateOnly
// reports whether the value carried no time component; bare dates are
// interpreted at midnight WIB.
func ParseDateOrTime(value string) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation(DateLayout, value, WIB); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, ErrBadDate
}

// RangeEnd parses an inclusive upper bound. A bare date extends to the end
// of that day.
func RangeEnd(value string) (time.Time, error) {
	t, dateOnly, err := ParseDateOrTime(value)
	if err != nil {
		return time.Time{}, err
	}
	if dateOnly {
		return EndOfDay(t), nil
	}
	return t, nil
}

// RangeStart parses an inclusive lower bound.
func RangeStart(value string) (time.Time, error) {
	t, _, err := ParseDateOrTime(value)
	return t, err
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 15:04"
)
