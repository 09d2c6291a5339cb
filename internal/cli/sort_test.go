package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Moontok/WorkshopApp/internal/workshop"
)

func TestSortWorkshops(t *testing.T) {
	newList := func() []*workshop.Workshop {
		return []*workshop.Workshop{
			{WorkshopID: "300000", Name: "charlie", StartDateAndTime: "03/01/2024 9:00 AM"},
			{WorkshopID: "100000", Name: "Bravo", StartDateAndTime: "not a date"},
			{WorkshopID: "200000", Name: "alpha", StartDateAndTime: "01/15/2024 1:00 PM"},
		}
	}

	tests := []struct {
		order SortOrder
		want  []string
	}{
		{SortByDate, []string{"200000", "300000", "100000"}},
		{SortByID, []string{"100000", "200000", "300000"}},
		{SortByName, []string{"200000", "100000", "300000"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			list := newList()
			sortWorkshops(list, tt.order)
			for i, id := range tt.want {
				if list[i].WorkshopID != id {
					t.Errorf("position %d = %s, want %s", i, list[i].WorkshopID, id)
				}
			}
		})
	}
}

func TestSortKeepsDuplicateOrder(t *testing.T) {
	list := []*workshop.Workshop{
		{WorkshopID: "111111", Name: "first"},
		{WorkshopID: "111111", Name: "second"},
	}
	sortWorkshops(list, SortByID)
	if list[0].Name != "first" {
		t.Errorf("duplicates reordered: %s first", list[0].Name)
	}
}

func TestParseSortOrder(t *testing.T) {
	if got, err := parseSortOrder("NAME"); err != nil || got != SortByName {
		t.Errorf("parseSortOrder(NAME) = %q, %v", got, err)
	}
	if _, err := parseSortOrder("size"); err == nil {
		t.Error("expected error for unknown order")
	}
}

func TestWriteSyncText(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSync(&buf, &SyncOutput{
		WorkshopCount: 1,
		Duration:      "1.2s",
		Added:         []*workshop.Workshop{{WorkshopID: "123456", Name: "Intro", StartDateAndTime: "01/02/2024 9:00 AM"}},
		EnrollmentChanged: []*workshop.EnrollmentChange{
			{WorkshopID: "234567", Name: "Bar", OldSignedUp: 1, NewSignedUp: 4},
		},
	}, FormatText)
	if err != nil {
		t.Fatalf("WriteSync() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Synced 1 workshops in 1.2s.",
		"NEW: 123456 - Intro (01/02/2024 9:00 AM)",
		"ENROLLMENT: 234567 - Bar 1 -> 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSearchEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearch(&buf, &SearchOutput{}, FormatText); err != nil {
		t.Fatalf("WriteSearch() error = %v", err)
	}
	if buf.String() != "No workshops found.\n" {
		t.Errorf("output = %q", buf.String())
	}
}
