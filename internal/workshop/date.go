package workshop

import (
	"fmt"
	"strings"
	"time"
)

const (
	// StartLayout is the portal's listing format, e.g. "01/02/2024 9:00 AM"
	StartLayout = "1/2/2006 3:04 PM"

	// SessionDateLayout is the format of a single session date on the detail page
	SessionDateLayout = "1/2/2006"
)

// ParseStart parses a listing start date and time such as "01/02/2024 9:00 AM".
// Times are interpreted in UTC.
func ParseStart(text string) (time.Time, error) {
	t, err := time.Parse(StartLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing start date %q: %w", text, err)
	}
	return t, nil
}

// StartDay returns the calendar day the workshop starts on, at midnight UTC
func (w *Workshop) StartDay() (time.Time, error) {
	t, err := ParseStart(w.StartDateAndTime)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseSessionDate parses one entry of Workshop.Dates.
// Session cells sometimes carry a time as well, so the start layout is accepted too.
// Returns time.Time{} (zero value) if parsing fails.
func ParseSessionDate(text string) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}
	}

	if t, err := time.Parse(SessionDateLayout, text); err == nil {
		return t
	}

	if t, err := time.Parse(StartLayout, text); err == nil {
		return t
	}

	// "01/02/2024 9:00 AM - 12:00 PM": keep the leading date
	if fields := strings.Fields(text); len(fields) > 0 {
		if t, err := time.Parse(SessionDateLayout, fields[0]); err == nil {
			return t
		}
	}

	return time.Time{}
}
