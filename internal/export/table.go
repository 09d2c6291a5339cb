package export

import (
	"strconv"
	"strings"

	"github.com/Moontok/WorkshopApp/internal/query"
	"github.com/Moontok/WorkshopApp/internal/workshop"
)

var workshopHeader = []string{
	"Workshop ID",
	"Name",
	"Start Date and Time",
	"Signed Up",
	"Capacity",
	"Location",
	"Dates",
	"Credits",
	"Fees",
	"URL",
}

var rosterHeader = []string{
	"Workshop ID",
	"Workshop",
	"Name",
	"Email",
	"School",
}

// workshopTable returns the header, one row per workshop, and a totals row
func workshopTable(workshops []*workshop.Workshop) [][]string {
	table := make([][]string, 0, len(workshops)+2)
	table = append(table, workshopHeader)

	for _, w := range workshops {
		table = append(table, []string{
			w.WorkshopID,
			w.Name,
			w.StartDateAndTime,
			strconv.Itoa(w.SignedUp),
			strconv.Itoa(w.ParticipantCapacity),
			w.Location,
			strings.Join(w.Dates, ", "),
			w.Credits,
			w.Fees,
			w.URL,
		})
	}

	totals := query.Compute(workshops)
	table = append(table, []string{
		"Totals",
		strconv.Itoa(totals.NumberOfWorkshops) + " workshops",
		"",
		strconv.Itoa(totals.NumberOfParticipants),
		"", "", "", "", "", "",
	})

	return table
}

// rosterTable returns the header and one row per participant
func rosterTable(workshops []*workshop.Workshop) [][]string {
	table := [][]string{rosterHeader}
	for _, w := range workshops {
		for _, p := range w.Participants {
			table = append(table, []string{w.WorkshopID, w.Name, p.Name, p.Email, p.School})
		}
	}
	return table
}
