package activity

import (
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestResolveStatus(t *testing.T) {
	var (
		now   = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
		start = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
		end   = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	)

	tests := []struct {
		name    string
		active  bool
		startAt *time.Time
		endAt   *time.Time
		now     time.Time
		want    Status
	}{
		{"no window", true, nil, nil, now, StatusOpen},
		{"inside window", true, timePtr(start), timePtr(end), now, StatusOpen},
		{"before window", true, timePtr(start), timePtr(end), start.Add(-time.Second), StatusScheduled},
		{"after window", true, timePtr(start), timePtr(end), end.Add(time.Second), StatusClosed},
		{"at start boundary", true, timePtr(start), timePtr(end), start, StatusOpen},
		{"at end boundary", true, timePtr(start), timePtr(end), end, StatusOpen},
		{"start only, before", true, timePtr(start), nil, start.Add(-time.Second), StatusScheduled},
		{"start only, at boundary", true, timePtr(start), nil, start, StatusOpen},
		{"start only, after", true, timePtr(start), nil, end.AddDate(1, 0, 0), StatusOpen},
		{"end only, before", true, nil, timePtr(end), start.AddDate(-1, 0, 0), StatusOpen},
		{"end only, at boundary", true, nil, timePtr(end), end, StatusOpen},
		{"end only, after", true, nil, timePtr(end), end.Add(time.Second), StatusClosed},
		{"start equals end", true, timePtr(start), timePtr(start), start, StatusClosed},
		{"start after end, before both", true, timePtr(end), timePtr(start), start.Add(-time.Hour), StatusClosed},
		{"start after end, between", true, timePtr(end), timePtr(start), now, StatusClosed},
		{"start after end, after both", true, timePtr(end), timePtr(start), end.Add(time.Hour), StatusClosed},
		{"inactive, no window", false, nil, nil, now, StatusClosed},
		{"inactive, inside window", false, timePtr(start), timePtr(end), now, StatusClosed},
		{"inactive, before window", false, timePtr(start), timePtr(end), start.Add(-time.Second), StatusClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveStatus(tt.active, tt.startAt, tt.endAt, tt.now); got != tt.want {
				t.Errorf("ResolveStatus() = %v, want %v", got, tt.want)
			}
			// same inputs, same answer
			if again := ResolveStatus(tt.active, tt.startAt, tt.endAt, tt.now); again != tt.want {
				t.Errorf("ResolveStatus() not deterministic: got %v then %v", tt.want, again)
			}
		})
	}
}

func TestActivityLifecycle(t *testing.T) {
	start, err := CombineDateTime("2025-06-01", "08:00", time.UTC)
	if err != nil {
		t.Fatalf("CombineDateTime() failed, %v", err)
	}
	end, err := CombineDateTime("2025-06-01", "10:00", time.UTC)
	if err != nil {
		t.Fatalf("CombineDateTime() failed, %v", err)
	}

	act := Activity{
		Kind:    KindEssay,
		Title:   "June theme",
		Active:  true,
		StartAt: &start,
		EndAt:   &end,
	}

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"the night before", time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC), StatusScheduled},
		{"doors open", start, StatusOpen},
		{"mid-session", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), StatusOpen},
		{"last second", end, StatusOpen},
		{"just missed it", end.Add(time.Second), StatusClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := act.StatusAt(tt.now); got != tt.want {
				t.Errorf("StatusAt() = %v, want %v", got, tt.want)
			}
		})
	}

	// deactivation closes it immediately, even mid-window
	act.Active = false
	if got := act.StatusAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)); got != StatusClosed {
		t.Errorf("StatusAt() = %v, want %v for deactivated activity", got, StatusClosed)
	}
}
