package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthPattern = `(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)`

var (
	numericRangeRe = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s*-\s*(\d{1,2}/\d{1,2}/\d{4})$`)
	toRangeRe      = regexp.MustCompile(`(?i)^(.+?)\s+to\s+(.+)$`)
	sameMonthRe    = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	crossMonthRe   = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*` + monthPattern + `\s+(\d{1,2})$`)
	wholeMonthRe   = regexp.MustCompile(`(?i)^` + monthPattern + `$`)
)

// dateLayouts are accepted by ParseDate, most specific first
var dateLayouts = []string{
	"1/2/2006",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses a single calendar date such as "01/02/2024" or "2024-01-02".
// The result is midnight UTC.
func ParseDate(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q. Use MM/DD/YYYY or YYYY-MM-DD", input)
}

// ParseDateRange parses a date range string into its first and last calendar day.
//
// Supported formats:
//   - "01/02/2024-01/31/2024" or "2024-01-02 to 2024-01-31" - explicit dates
//   - "01/02/2024" - a single day
//   - "Mar 1-15" or "March 1-15" - same month, different days
//   - "March 1 - April 15" - different months
//   - "March" - entire month
//
// For month names without a year, a month already past this year is taken to mean next
// year, and a cross-month range whose end month precedes its start month ends next year.
// Both bounds are midnight UTC; callers compare by calendar day.
func ParseDateRange(input string) (time.Time, time.Time, error) {
	return parseDateRangeAt(input, time.Now())
}

func parseDateRangeAt(input string, now time.Time) (time.Time, time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("date range cannot be empty")
	}

	if matches := numericRangeRe.FindStringSubmatch(input); matches != nil {
		return explicitRange(matches[1], matches[2])
	}

	if matches := toRangeRe.FindStringSubmatch(input); matches != nil {
		return explicitRange(matches[1], matches[2])
	}

	if day, err := ParseDate(input); err == nil {
		return day, day, nil
	}

	if matches := sameMonthRe.FindStringSubmatch(input); matches != nil {
		month := parseMonth(matches[1])
		day1, err := parseDay(matches[2])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		day2, err := parseDay(matches[3])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}

		year := yearForMonth(month, now)
		from := time.Date(year, month, day1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, month, day2, 0, 0, 0, 0, time.UTC)
		return ordered(from, to)
	}

	if matches := crossMonthRe.FindStringSubmatch(input); matches != nil {
		month1 := parseMonth(matches[1])
		day1, err := parseDay(matches[2])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		month2 := parseMonth(matches[3])
		day2, err := parseDay(matches[4])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}

		year1 := yearForMonth(month1, now)
		year2 := year1
		if month2 < month1 {
			year2++
		}

		from := time.Date(year1, month1, day1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year2, month2, day2, 0, 0, 0, 0, time.UTC)
		return ordered(from, to)
	}

	if matches := wholeMonthRe.FindStringSubmatch(input); matches != nil {
		month := parseMonth(matches[1])
		year := yearForMonth(month, now)
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		// Day 0 of the next month is the last day of this one
		to := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
		return from, to, nil
	}

	return time.Time{}, time.Time{}, fmt.Errorf("invalid date range format. Use '01/02/2024-01/31/2024', 'Mar 1-15', 'March 1 - April 15', or 'March'")
}

func explicitRange(a, b string) (time.Time, time.Time, error) {
	from, err := ParseDate(a)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := ParseDate(b)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return ordered(from, to)
}

func ordered(from, to time.Time) (time.Time, time.Time, error) {
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date must be before end date")
	}
	return from, to, nil
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("invalid day: %s", s)
	}
	return day, nil
}

// parseMonth converts a month name to time.Month
func parseMonth(name string) time.Month {
	name = strings.ToLower(strings.TrimSpace(name))

	months := map[string]time.Month{
		"jan": time.January, "january": time.January,
		"feb": time.February, "february": time.February,
		"mar": time.March, "march": time.March,
		"apr": time.April, "april": time.April,
		"may": time.May,
		"jun": time.June, "june": time.June,
		"jul": time.July, "july": time.July,
		"aug": time.August, "august": time.August,
		"sep": time.September, "sept": time.September, "september": time.September,
		"oct": time.October, "october": time.October,
		"nov": time.November, "november": time.November,
		"dec": time.December, "december": time.December,
	}

	return months[name]
}

// yearForMonth returns now's year, or the next one if month has already passed
func yearForMonth(month time.Month, now time.Time) int {
	year := now.Year()
	if month < now.Month() {
		year++
	}
	return year
}
