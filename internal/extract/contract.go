package extract

import "errors"

// ContractVersion identifies the portal markup these selectors were written against.
// Bump it whenever a selector or offset below changes.
const ContractVersion = 1

// Listing (instructor) page
const (
	listingRowSelector = "table.mainBody tr"
	listingTable       = "table.mainBody"

	// The first listing cell reads "123456 - Intro to Foo"
	listingIDLength      = 6
	listingNameSeparator = " - "
	listingNameOffset    = 9

	enrollmentSeparator = " / "
	listingMinCells     = 3
)

// Detail (public session) page
const (
	detailNameSelector        = "#lblName"
	detailDescriptionSelector = "#lblDescription"
	detailLocationSelector    = "#lblLocation"
	detailFeeSelector         = "#lblFee"
	detailCreditsSelector     = "#lblCredits"
	detailSeatsSelector       = "#lblSeatsFilled"
	detailSessionCellSelector = "table#tblSessions td"

	// "3 of 20"
	seatsFilledSeparator = " of "

	// Session cells repeat in groups of three (date/time, room, location) after a
	// six-cell header block.
	sessionHeaderCells    = 6
	sessionGroupSize      = 3
	sessionLocationOffset = 2
)

// Roster page
const (
	rosterRowSelector = "div#RadGrid1_GridData tbody tr"

	// The first roster cell is a row selector column
	rosterSkipCells = 1
	rosterFields    = 3
)

// ErrStructure means the HTML did not have the shape the extraction contract expects.
// It signals a portal layout change rather than a transient failure.
var ErrStructure = errors.New("unexpected page structure")
