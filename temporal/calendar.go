package temporal

import "time"

// Calendar unit names accepted by generic offsets.
const (
	unitDay   = "day"
	unitWeek  = "week"
	unitMonth = "month"
	unitYear  = "year"
)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns Monday 00:00 of the week containing t.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// lastInstantBefore returns the final representable instant of a period
// whose successor begins at next.
func lastInstantBefore(next time.Time) time.Time {
	return next.Add(-time.Nanosecond)
}

// period returns the calendar period of the given unit containing t.
func period(t time.Time, unit string) (time.Time, time.Time) {
	switch unit {
	case unitWeek:
		start := startOfWeek(t)
		return start, lastInstantBefore(start.AddDate(0, 0, 7))
	case unitMonth:
		start := startOfMonth(t)
		return start, lastInstantBefore(start.AddDate(0, 1, 0))
	case unitYear:
		start := startOfYear(t)
		return start, lastInstantBefore(start.AddDate(1, 0, 0))
	default:
		start := startOfDay(t)
		return start, lastInstantBefore(start.AddDate(0, 0, 1))
	}
}

// shift moves t back by n units.
func shift(t time.Time, unit string, n int) time.Time {
	switch unit {
	case unitWeek:
		return t.AddDate(0, 0, -7*n)
	case unitMonth:
		return t.AddDate(0, -n, 0)
	case unitYear:
		return t.AddDate(-n, 0, 0)
	default:
		return t.AddDate(0, 0, -n)
	}
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
	"twelve": 12,
}
