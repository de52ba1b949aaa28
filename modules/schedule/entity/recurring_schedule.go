package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"studio-api/core/entity"
)

// RecurringSchedule is the weekly template a class runs on. Editing it
// changes future materialization only; booking history on past dates is
// keyed by (schedule_id, class_date) and stays untouched.
type RecurringSchedule struct {
	LocationID        uuid.UUID     `db:"location_id" json:"location_id"`
	ClassDefinitionID string        `db:"class_definition_id" json:"class_definition_id"`
	CoachID           uuid.UUID     `db:"coach_id" json:"coach_id"`
	Weekdays          pq.Int64Array `db:"weekdays" json:"weekdays"`     // ISO: 1=Mon … 7=Sun
	StartTime         string        `db:"start_time" json:"start_time"` // HH:MM
	DurationMinutes   int           `db:"duration_minutes" json:"duration_minutes"`
	MaxParticipants   int           `db:"max_participants" json:"max_participants"`
	StartDate         time.Time     `db:"start_date" json:"start_date"`
	EndDate           time.Time     `db:"end_date" json:"end_date"`
	HasWaitlist       bool          `db:"has_waitlist" json:"has_waitlist"`
	SpecialLabel      *string       `db:"special_label" json:"special_label,omitempty"`
	entity.BaseEntity
}

// RunsOn reports whether the template produces an occurrence on the given
// date: inside the validity window and on a matching ISO weekday.
func (s *RecurringSchedule) RunsOn(date time.Time) bool {
	day := truncateToDate(date)
	if day.Before(truncateToDate(s.StartDate)) || day.After(truncateToDate(s.EndDate)) {
		return false
	}
	return s.hasWeekday(isoWeekday(day))
}

func (s *RecurringSchedule) hasWeekday(iso int) bool {
	for _, d := range s.Weekdays {
		if int(d) == iso {
			return true
		}
	}
	return false
}

// isoWeekday maps time.Weekday (Sunday=0) to ISO numbering (Monday=1 … Sunday=7).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
