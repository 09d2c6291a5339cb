package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Moontok/WorkshopApp/internal/query"
	"github.com/Moontok/WorkshopApp/internal/workshop"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(s string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(s)); format {
	case FormatText, FormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// SearchOutput contains the results of a cache search
type SearchOutput struct {
	SearchedAt   time.Time            `json:"searched_at"`
	Workshops    []*workshop.Workshop `json:"workshops"`
	Matched      query.Totals         `json:"matched"`
	Participants bool                 `json:"-"`
}

// SyncOutput summarizes a completed sync
type SyncOutput struct {
	RunID             string                       `json:"run_id"`
	CheckedAt         time.Time                    `json:"checked_at"`
	Duration          string                       `json:"duration"`
	WorkshopCount     int                          `json:"workshop_count"`
	Added             []*workshop.Workshop         `json:"added"`
	Removed           []*workshop.Workshop         `json:"removed"`
	EnrollmentChanged []*workshop.EnrollmentChange `json:"enrollment_changed"`
}

// WriteSearch writes search results in the specified format
func WriteSearch(w io.Writer, result *SearchOutput, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeSearchText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteSync writes a sync summary in the specified format
func WriteSync(w io.Writer, result *SyncOutput, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeSyncText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeSearchText(w io.Writer, result *SearchOutput) error {
	if len(result.Workshops) == 0 {
		fmt.Fprintln(w, "No workshops found.")
		return nil
	}

	for _, ws := range result.Workshops {
		fmt.Fprintf(w, "%s  %-20s  %3d/%-3d  %s\n",
			ws.WorkshopID, ws.StartDateAndTime, ws.SignedUp, ws.ParticipantCapacity, ws.Name)
		if ws.Location != "" {
			fmt.Fprintf(w, "        Location: %s\n", ws.Location)
		}
		if len(ws.Dates) > 1 {
			fmt.Fprintf(w, "        Sessions: %s\n", strings.Join(ws.Dates, ", "))
		}
		if result.Participants {
			for _, p := range ws.Participants {
				fmt.Fprintf(w, "          - %s <%s> %s\n", p.Name, p.Email, p.School)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d workshops, %d participants\n",
		result.Matched.NumberOfWorkshops, result.Matched.NumberOfParticipants)
	return nil
}

func writeSyncText(w io.Writer, result *SyncOutput) error {
	fmt.Fprintf(w, "Synced %d workshops in %s.\n", result.WorkshopCount, result.Duration)

	if len(result.Added) == 0 && len(result.Removed) == 0 && len(result.EnrollmentChanged) == 0 {
		fmt.Fprintln(w, "No changes since the last sync.")
		return nil
	}

	for _, ws := range result.Added {
		fmt.Fprintf(w, "NEW: %s - %s (%s)\n", ws.WorkshopID, ws.Name, ws.StartDateAndTime)
	}
	for _, ws := range result.Removed {
		fmt.Fprintf(w, "REMOVED: %s - %s\n", ws.WorkshopID, ws.Name)
	}
	for _, c := range result.EnrollmentChanged {
		fmt.Fprintf(w, "ENROLLMENT: %s - %s %d -> %d\n", c.WorkshopID, c.Name, c.OldSignedUp, c.NewSignedUp)
	}
	return nil
}
