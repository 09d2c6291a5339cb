package extract

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// WorkshopDetail holds the fields of a workshop's public detail page
type WorkshopDetail struct {
	Name        string
	Description string
	Location    string
	Fee         string
	Credits     string
	SeatsFilled string
	Dates       []string // in page order
}

// Detail extracts the labeled fields and session dates from a workshop detail page.
// A page that has neither the name label nor the sessions table yields ErrStructure.
func Detail(r io.Reader) (WorkshopDetail, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return WorkshopDetail{}, fmt.Errorf("parsing HTML: %w", err)
	}

	cells := doc.Find(detailSessionCellSelector)
	name, hasName := textOf(doc, detailNameSelector)
	if !hasName && cells.Length() == 0 {
		return WorkshopDetail{}, fmt.Errorf("%w: neither %q nor %q found", ErrStructure, detailNameSelector, detailSessionCellSelector)
	}

	d := WorkshopDetail{Name: name}
	d.Description, _ = textOf(doc, detailDescriptionSelector)
	d.Fee, _ = textOf(doc, detailFeeSelector)
	d.Credits, _ = textOf(doc, detailCreditsSelector)
	d.SeatsFilled, _ = textOf(doc, detailSeatsSelector)

	var sessions []string
	cells.Each(func(_ int, td *goquery.Selection) {
		sessions = append(sessions, cleanText(td.Text()))
	})

	var location string
	d.Dates, location = sessionDates(sessions)

	if loc, ok := textOf(doc, detailLocationSelector); ok && loc != "" {
		d.Location = loc
	} else {
		d.Location = location
	}

	return d, nil
}

// SeatsTaken returns the filled count from SeatsFilled, e.g. 3 for "3 of 20".
// ok is false when the label was absent or unreadable.
func (d WorkshopDetail) SeatsTaken() (n int, ok bool) {
	filled, _, found := strings.Cut(d.SeatsFilled, seatsFilledSeparator)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(filled))
	if err != nil {
		return 0, false
	}
	return n, true
}

// sessionDates returns every third cell after the header block, and the location
// cell of the first session group.
func sessionDates(cells []string) ([]string, string) {
	if len(cells) <= sessionHeaderCells {
		return nil, ""
	}
	body := cells[sessionHeaderCells:]

	var location string
	if len(body) > sessionLocationOffset {
		location = body[sessionLocationOffset]
	}

	dates := make([]string, 0, (len(body)+sessionGroupSize-1)/sessionGroupSize)
	for i := 0; i < len(body); i += sessionGroupSize {
		dates = append(dates, body[i])
	}
	return dates, location
}
