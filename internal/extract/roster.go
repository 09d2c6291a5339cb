package extract

import (
	"fmt"
	"io"

	"github.com/Moontok/WorkshopApp/internal/workshop"
	"github.com/PuerkitoBio/goquery"
)

// Roster extracts the participants from a workshop roster page.
// Rows without three populated cells after the selector column (such as the grid's
// "no records" placeholder) are skipped. A page without the grid has no participants.
func Roster(r io.Reader) ([]workshop.Participant, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	participants := make([]workshop.Participant, 0)
	doc.Find(rosterRowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		if len(cells) < rosterSkipCells+rosterFields {
			return
		}
		fields := cells[rosterSkipCells : rosterSkipCells+rosterFields]
		for _, f := range fields {
			if f == "" {
				return
			}
		}

		participants = append(participants, workshop.Participant{
			Name:   fields[0],
			Email:  fields[1],
			School: fields[2],
		})
	})

	return participants, nil
}
