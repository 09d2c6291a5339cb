package workshop

import (
	"sort"
)

// EnrollmentChange records a workshop whose sign-up count moved between syncs
type EnrollmentChange struct {
	WorkshopID  string `json:"workshop_id"`
	Name        string `json:"name"`
	OldSignedUp int    `json:"old_signed_up"`
	NewSignedUp int    `json:"new_signed_up"`
}

// DiffResult contains the results of comparing two sync results
type DiffResult struct {
	Added             []*Workshop         `json:"added"`
	Removed           []*Workshop         `json:"removed"`
	EnrollmentChanged []*EnrollmentChange `json:"enrollment_changed"`
}

// IsEmpty reports whether the two sync results were equivalent
func (d *DiffResult) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.EnrollmentChanged) == 0
}

// Diff compares the workshops from the previous sync against the current ones.
// Workshops are matched by WorkshopID; when the portal lists an ID more than once
// only the first occurrence on each side takes part in the comparison.
func Diff(previous, current []*Workshop) *DiffResult {
	result := &DiffResult{
		Added:             make([]*Workshop, 0),
		Removed:           make([]*Workshop, 0),
		EnrollmentChanged: make([]*EnrollmentChange, 0),
	}

	before := indexByID(previous)
	after := indexByID(current)

	for id, cur := range after {
		prev, exists := before[id]
		if !exists {
			result.Added = append(result.Added, cur)
			continue
		}
		if prev.SignedUp != cur.SignedUp {
			result.EnrollmentChanged = append(result.EnrollmentChanged, &EnrollmentChange{
				WorkshopID:  id,
				Name:        cur.Name,
				OldSignedUp: prev.SignedUp,
				NewSignedUp: cur.SignedUp,
			})
		}
	}

	for id, prev := range before {
		if _, exists := after[id]; !exists {
			result.Removed = append(result.Removed, prev)
		}
	}

	// Sort for consistent output
	sort.Slice(result.Added, func(i, j int) bool {
		return result.Added[i].WorkshopID < result.Added[j].WorkshopID
	})
	sort.Slice(result.Removed, func(i, j int) bool {
		return result.Removed[i].WorkshopID < result.Removed[j].WorkshopID
	})
	sort.Slice(result.EnrollmentChanged, func(i, j int) bool {
		return result.EnrollmentChanged[i].WorkshopID < result.EnrollmentChanged[j].WorkshopID
	})

	return result
}

func indexByID(workshops []*Workshop) map[string]*Workshop {
	index := make(map[string]*Workshop, len(workshops))
	for _, w := range workshops {
		if w == nil {
			continue
		}
		if _, seen := index[w.WorkshopID]; !seen {
			index[w.WorkshopID] = w
		}
	}
	return index
}
