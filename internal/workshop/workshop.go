package workshop

import (
	"strings"
)

// DatesSeparator joins multiple session dates into one stored field
const DatesSeparator = "_"

// Participant is one person signed up for a workshop
type Participant struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	School string `json:"school"`
}

// Workshop represents a single workshop as listed on the portal
type Workshop struct {
	WorkshopID          string        `json:"workshop_id"`
	Name                string        `json:"name"`
	StartDateAndTime    string        `json:"start_date_and_time"`
	SignedUp            int           `json:"signed_up"`
	ParticipantCapacity int           `json:"participant_capacity"`
	URL                 string        `json:"url"`
	Location            string        `json:"location,omitempty"`
	Description         string        `json:"description,omitempty"`
	Dates               []string      `json:"dates,omitempty"`
	Credits             string        `json:"credits,omitempty"`
	Fees                string        `json:"fees,omitempty"`
	Participants        []Participant `json:"participants"`
}

// JoinDates flattens an ordered list of session dates into the stored form
func JoinDates(dates []string) string {
	return strings.Join(dates, DatesSeparator)
}

// SplitDates restores the ordered list of session dates from the stored form.
// An empty string yields no dates.
func SplitDates(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, DatesSeparator)
}

// Emails returns the email address of every participant, in roster order
func (w *Workshop) Emails() []string {
	emails := make([]string, 0, len(w.Participants))
	for _, p := range w.Participants {
		if p.Email != "" {
			emails = append(emails, p.Email)
		}
	}
	return emails
}

// OpenSeats returns the remaining capacity. Portal data may report more sign-ups
// than seats, in which case the result is negative.
func (w *Workshop) OpenSeats() int {
	return w.ParticipantCapacity - w.SignedUp
}
