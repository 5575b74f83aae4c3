package activity

import (
	"testing"
	"time"
)

func TestCombineDateTime(t *testing.T) {
	lagos, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		t.Fatalf("time.LoadLocation() failed, %v", err)
	}

	tests := []struct {
		name    string
		date    string
		clock   string
		loc     *time.Location
		want    time.Time
		wantErr bool
	}{
		{"date and clock", "2025-06-01", "08:00", time.UTC, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), false},
		{"clock with seconds", "2025-06-01", "08:30:15", time.UTC, time.Date(2025, 6, 1, 8, 30, 15, 0, time.UTC), false},
		{"empty clock defaults to midnight", "2025-06-01", "", time.UTC, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), false},
		{"nil location defaults to UTC", "2025-06-01", "08:00", nil, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), false},
		{"non-UTC location", "2025-06-01", "08:00", lagos, time.Date(2025, 6, 1, 8, 0, 0, 0, lagos), false},
		{"bad date", "01/06/2025", "08:00", time.UTC, time.Time{}, true},
		{"bad clock", "2025-06-01", "8am", time.UTC, time.Time{}, true},
		{"empty date", "", "08:00", time.UTC, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CombineDateTime(tt.date, tt.clock, tt.loc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CombineDateTime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("CombineDateTime() = %v, want %v", got, tt.want)
			}
		})
	}
}
