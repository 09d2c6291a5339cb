package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Moontok/WorkshopApp/internal/workshop"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate SortOrder = "date"
	SortByID   SortOrder = "id"
	SortByName SortOrder = "name"
)

func parseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(s)); order {
	case SortByDate, SortByID, SortByName:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order %q (use date, id or name)", s)
	}
}

// sortWorkshops sorts workshops in place. The sort is stable so duplicate IDs keep
// the order the portal listed them in.
func sortWorkshops(workshops []*workshop.Workshop, order SortOrder) {
	switch order {
	case SortByDate:
		sort.SliceStable(workshops, func(i, j int) bool {
			return compareByDate(workshops[i], workshops[j])
		})
	case SortByID:
		sort.SliceStable(workshops, func(i, j int) bool {
			return workshops[i].WorkshopID < workshops[j].WorkshopID
		})
	case SortByName:
		sort.SliceStable(workshops, func(i, j int) bool {
			if !strings.EqualFold(workshops[i].Name, workshops[j].Name) {
				return strings.ToLower(workshops[i].Name) < strings.ToLower(workshops[j].Name)
			}
			return compareByDate(workshops[i], workshops[j])
		})
	}
}

// compareByDate reports whether i starts before j.
// Workshops with an unreadable start date sort after the rest, by name.
func compareByDate(i, j *workshop.Workshop) bool {
	startI, errI := workshop.ParseStart(i.StartDateAndTime)
	startJ, errJ := workshop.ParseStart(j.StartDateAndTime)

	switch {
	case errI == nil && errJ == nil:
		return startI.Before(startJ)
	case errI == nil:
		return true
	case errJ == nil:
		return false
	}

	return strings.ToLower(i.Name) < strings.ToLower(j.Name)
}
