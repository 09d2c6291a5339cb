package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Moontok/WorkshopApp/internal/workshop"
)

const (
	// Sessions listed without a time get a 9 AM - 1 PM slot
	defaultSessionHour   = 9
	defaultSessionLength = 4 * time.Hour

	// Floating local time: the portal lists times without a zone
	icsLocalLayout = "20060102T150405"
)

// WriteICS writes an iCalendar file with one event per workshop session.
// Workshops without readable session dates fall back to their listing start time;
// workshops with neither are left out.
func WriteICS(w io.Writer, workshops []*workshop.Workshop, now time.Time) error {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//Moontok//workshop-sync//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	for _, ws := range workshops {
		for n, session := range sessionsOf(ws) {
			writeEvent(&ics, ws, n+1, session, now)
		}
	}

	ics.WriteString("END:VCALENDAR\r\n")

	if _, err := io.WriteString(w, ics.String()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

type session struct {
	start time.Time
	end   time.Time
}

func writeEvent(ics *strings.Builder, ws *workshop.Workshop, n int, s session, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s-%d@workshop-sync\r\n", ws.WorkshopID, n))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", now.UTC().Format("20060102T150405Z")))
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", s.start.Format(icsLocalLayout)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", s.end.Format(icsLocalLayout)))
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(ws.Name)))

	description := fmt.Sprintf("Workshop %s\nEnrollment: %d / %d", ws.WorkshopID, ws.SignedUp, ws.ParticipantCapacity)
	if ws.Description != "" {
		description = ws.Description + "\n\n" + description
	}
	if ws.Credits != "" {
		description += "\nCredits: " + ws.Credits
	}
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))

	if ws.Location != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(ws.Location)))
	}
	if ws.URL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", ws.URL))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// sessionsOf returns the sessions of a workshop in date order as listed
func sessionsOf(ws *workshop.Workshop) []session {
	var sessions []session
	for _, text := range ws.Dates {
		if s, ok := parseSession(text); ok {
			sessions = append(sessions, s)
		}
	}
	if len(sessions) > 0 {
		return sessions
	}

	if start, err := workshop.ParseStart(ws.StartDateAndTime); err == nil {
		return []session{{start: start, end: start.Add(defaultSessionLength)}}
	}
	return nil
}

// parseSession reads "1/2/2024 9:00 AM - 3:00 PM", "1/2/2024 9:00 AM", or "1/2/2024"
func parseSession(text string) (session, bool) {
	text = strings.TrimSpace(text)
	startText, endText, hasEnd := strings.Cut(text, " - ")

	if start, err := time.Parse(workshop.StartLayout, strings.TrimSpace(startText)); err == nil {
		end := start.Add(defaultSessionLength)
		if hasEnd {
			if t, err := time.Parse("3:04 PM", strings.TrimSpace(endText)); err == nil {
				candidate := time.Date(start.Year(), start.Month(), start.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
				if candidate.After(start) {
					end = candidate
				}
			}
		}
		return session{start: start, end: end}, true
	}

	day := workshop.ParseSessionDate(text)
	if day.IsZero() {
		return session{}, false
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), defaultSessionHour, 0, 0, 0, time.UTC)
	return session{start: start, end: start.Add(defaultSessionLength)}, true
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
