package entity

import (
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestRunsOn(t *testing.T) {
	s := RecurringSchedule{
		Weekdays:  pq.Int64Array{1, 7}, // Monday, Sunday
		StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	cases := []struct {
		name string
		date time.Time
		want bool
	}{
		{"monday inside window", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"sunday maps to iso 7", time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), true},
		{"tuesday not scheduled", time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), false},
		{"start date is inclusive", time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC), true},
		{"end date is inclusive", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"before window", time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC), false},
		{"after window", time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		if got := s.RunsOn(tc.date); got != tc.want {
			t.Errorf("%s: RunsOn(%v) = %v, want %v", tc.name, tc.date, got, tc.want)
		}
	}
}
