package storage

import (
	"testing"
	"time"
)

func TestBucket(t *testing.T) {
	tests := []struct {
		name  string
		date  time.Time
		year  int
		month int
		day   int
	}{
		{
			name:  "utc midnight",
			date:  time.Date(2025, time.August, 28, 0, 0, 0, 0, time.UTC),
			year:  2025,
			month: 8,
			day:   28,
		},
		{
			name:  "local evening lands on next utc day",
			date:  time.Date(2025, time.August, 31, 22, 0, 0, 0, time.FixedZone("BRT", -3*60*60)),
			year:  2025,
			month: 9,
			day:   1,
		},
		{
			name:  "positive offset early morning lands on previous utc day",
			date:  time.Date(2024, time.January, 1, 0, 30, 0, 0, time.FixedZone("CET", 60*60)),
			year:  2023,
			month: 12,
			day:   31,
		},
		{
			name:  "positive offset at utc midnight stays on the same day",
			date:  time.Date(2024, time.January, 1, 1, 0, 0, 0, time.FixedZone("CET", 60*60)),
			year:  2024,
			month: 1,
			day:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month, day := Bucket(tt.date)
			if year != tt.year || month != tt.month || day != tt.day {
				t.Errorf("Bucket() = %d-%d-%d, want %d-%d-%d", year, month, day, tt.year, tt.month, tt.day)
			}
		})
	}
}

func TestInconsistencyErrorMessage(t *testing.T) {
	daily := &InconsistencyError{Table: "month_history", UserID: 7, Year: 2025, Month: 8, Day: 28}
	if got := daily.Error(); got != "missing month_history row for user 7 on 2025-08-28" {
		t.Errorf("unexpected message %q", got)
	}

	monthly := &InconsistencyError{Table: "year_history", UserID: 7, Year: 2025, Month: 8}
	if got := monthly.Error(); got != "missing year_history row for user 7 on 2025-08" {
		t.Errorf("unexpected message %q", got)
	}
}
