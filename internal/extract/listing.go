package extract

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ListingRow is one workshop row of the instructor listing page
type ListingRow struct {
	ID               string
	Name             string
	StartDateAndTime string
	SignedUp         int
	Capacity         int
}

// Listing extracts the workshop rows from the instructor listing page.
// The header row is skipped. A page without the workshop table, or a row that
// does not follow the id/date/enrollment layout, yields ErrStructure.
func Listing(r io.Reader) ([]ListingRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	if doc.Find(listingTable).Length() == 0 {
		return nil, fmt.Errorf("%w: %q not found", ErrStructure, listingTable)
	}

	rows := doc.Find(listingRowSelector)
	listing := make([]ListingRow, 0, rows.Length())

	var rowErr error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i == 0 {
			return true // header
		}

		parsed, err := parseListingRow(rowCells(row))
		if err != nil {
			rowErr = fmt.Errorf("listing row %d: %w", i, err)
			return false
		}
		listing = append(listing, parsed)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return listing, nil
}

func parseListingRow(cells []string) (ListingRow, error) {
	if len(cells) < listingMinCells {
		return ListingRow{}, fmt.Errorf("%w: expected %d cells, got %d", ErrStructure, listingMinCells, len(cells))
	}

	id, name, err := splitIDAndName(cells[0])
	if err != nil {
		return ListingRow{}, err
	}

	signedUp, capacity, err := parseEnrollment(cells[2])
	if err != nil {
		return ListingRow{}, err
	}

	return ListingRow{
		ID:               id,
		Name:             name,
		StartDateAndTime: cells[1],
		SignedUp:         signedUp,
		Capacity:         capacity,
	}, nil
}

// splitIDAndName splits "123456 - Intro to Foo" into its fixed-width id and display name
func splitIDAndName(raw string) (string, string, error) {
	if len(raw) < listingIDLength {
		return "", "", fmt.Errorf("%w: workshop cell %q shorter than id", ErrStructure, raw)
	}
	id := raw[:listingIDLength]
	if !utf8.ValidString(id) {
		return "", "", fmt.Errorf("%w: workshop id %q splits a character", ErrStructure, id)
	}

	rest := raw[listingIDLength:]
	if idx := strings.Index(rest, listingNameSeparator); idx >= 0 {
		return id, strings.TrimSpace(rest[idx+len(listingNameSeparator):]), nil
	}
	if len(raw) > listingNameOffset {
		if !utf8.RuneStart(raw[listingNameOffset]) {
			return "", "", fmt.Errorf("%w: workshop name in %q splits a character", ErrStructure, raw)
		}
		return id, strings.TrimSpace(raw[listingNameOffset:]), nil
	}
	return id, "", nil
}

// parseEnrollment splits "3 / 20" into signed-up and capacity.
// Signed-up may exceed capacity; the portal allows it.
func parseEnrollment(cell string) (int, int, error) {
	parts := strings.Split(cell, enrollmentSeparator)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: enrollment %q", ErrStructure, cell)
	}

	signedUp, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: signed up %q", ErrStructure, parts[0])
	}
	capacity, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: capacity %q", ErrStructure, parts[1])
	}

	return signedUp, capacity, nil
}
