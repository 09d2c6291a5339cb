package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Moontok/WorkshopApp/internal/workshop"
)

const utf8BOM = "\xEF\xBB\xBF"

// WriteCSV writes one row per workshop followed by a totals row
func WriteCSV(w io.Writer, workshops []*workshop.Workshop) error {
	return writeCSV(w, workshopTable(workshops))
}

// WriteRosterCSV writes one row per participant across all workshops
func WriteRosterCSV(w io.Writer, workshops []*workshop.Workshop) error {
	return writeCSV(w, rosterTable(workshops))
}

func writeCSV(w io.Writer, table [][]string) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}
