package workshop

import (
	"testing"
	"time"
)

func TestParseStart(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"01/02/2024 9:00 AM", time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), false},
		{"01/05/2024 1:00 PM", time.Date(2024, 1, 5, 13, 0, 0, 0, time.UTC), false},
		{"12/31/2025 11:59 PM", time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC), false},
		{"1/5/2024 12:30 PM", time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC), false},
		{"  03/04/2024 10:15 AM  ", time.Date(2024, 3, 4, 10, 15, 0, 0, time.UTC), false},
		{"2024-01-02", time.Time{}, true},
		{"", time.Time{}, true},
		{"01/02/2024", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStart(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStart(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseStart(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWorkshop_StartDay(t *testing.T) {
	w := &Workshop{StartDateAndTime: "01/05/2024 1:00 PM"}

	day, err := w.StartDay()
	if err != nil {
		t.Fatalf("StartDay() error: %v", err)
	}

	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("StartDay() = %v, want %v", day, want)
	}

	bad := &Workshop{StartDateAndTime: "TBD"}
	if _, err := bad.StartDay(); err == nil {
		t.Error("StartDay() expected error for unparseable date")
	}
}

func TestParseSessionDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"01/02/2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"1/9/2024", time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)},
		{"01/02/2024 9:00 AM", time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)},
		{"01/16/2024 9:00 AM - 12:00 PM", time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"Room 101", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseSessionDate(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseSessionDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
