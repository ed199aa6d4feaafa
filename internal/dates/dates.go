package dates

import (
	"strconv"
	"strings"
	"time"
)

// Today returns the current day at local midnight. Split for testability.
var Today = func() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

// Parse reads a business date in MM/DD/YY or MM/DD/YYYY form. Everything
// except digits and slashes is stripped first, so inputs like " 01/14/26 "
// or "01/14/26." still parse. Two-digit years mean 2000+year. The second
// return value is false for anything that does not name a real calendar day.
func Parse(text string) (time.Time, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '/' {
			return r
		}
		return -1
	}, text)
	parts := strings.Split(cleaned, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	month, day, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes out-of-range days (02/30 becomes 03/01); a
	// changed component means the input named no real day.
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// DaysBetween returns the whole-day difference b-a, positive when b is
// after a. Both arguments are reduced to their calendar day first, so the
// result is exact across DST changes, month boundaries and leap years.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}
