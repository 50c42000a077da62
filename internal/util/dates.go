package util

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ErrMissingDate is returned by ParseDate for an empty value.
var ErrMissingDate = errors.New("date is required")

// DaysInMonth returns the number of days in month of year. Day 0 of the
// following month normalises to the last day of month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// GetMonthDates returns the first and last instant of month in UTC. A zero
// year means the current one.
func GetMonthDates(month int, year int) (time.Time, time.Time) {
	y := year
	if y <= 0 {
		y = time.Now().UTC().Year()
	}

	firstOfMonth := time.Date(y, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, 0).Add(time.Nanosecond * -1)

	return firstOfMonth, lastOfMonth
}

// GetYearDates returns the first and last instant of year in UTC.
func GetYearDates(year int) (time.Time, time.Time) {
	firstOfYear := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	lastOfYear := firstOfYear.AddDate(1, 0, 0).Add(time.Nanosecond * -1)

	return firstOfYear, lastOfYear
}

// EndOfDay returns the last instant of the UTC calendar day of t.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1).Add(time.Nanosecond * -1)
}

// ParseDate accepts YYYY-MM-DD or RFC 3339. Date-only values are midnight UTC,
// or the end of that day when inclusiveEnd is set.
func ParseDate(value string, inclusiveEnd bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, ErrMissingDate
	}

	if t, err := time.Parse(dateLayout, value); err == nil {
		if inclusiveEnd {
			return EndOfDay(t), nil
		}
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", value)
	}

	return t.UTC(), nil
}
