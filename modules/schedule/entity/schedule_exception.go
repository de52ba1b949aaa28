package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExceptionStatus marks what happened to a single occurrence. An exception
// row without a status carries overrides only: the date still runs, with
// modified parameters.
type ExceptionStatus string

const (
	// ExceptionStatusCancelled keeps the instance visible, struck through
	// and unbookable; active bookings were cascaded and notified.
	ExceptionStatusCancelled ExceptionStatus = "CANCELLED"
	// ExceptionStatusDeleted removes the instance from every read path as
	// if it never existed. No cascade, no notifications.
	ExceptionStatusDeleted ExceptionStatus = "DELETED"
)

// ScheduleException overrides or strikes a single (schedule, date)
// occurrence without touching the recurring template. At most one row per
// key; CANCELLED and DELETED are terminal.
type ScheduleException struct {
	ID                 string           `db:"id" json:"id"`
	ScheduleID         string           `db:"schedule_id" json:"schedule_id"`
	Date               time.Time        `db:"date" json:"date"`
	Status             *ExceptionStatus `db:"status" json:"status,omitempty"`
	NewStartTime       *string          `db:"new_start_time" json:"new_start_time,omitempty"` // HH:MM
	NewDurationMinutes *int             `db:"new_duration_minutes" json:"new_duration_minutes,omitempty"`
	NewCoachID         *uuid.UUID       `db:"new_coach_id" json:"new_coach_id,omitempty"`
	NewMaxParticipants *int             `db:"new_max_participants" json:"new_max_participants,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

// IsCancelled reports a visible strike-through of the occurrence.
func (e *ScheduleException) IsCancelled() bool {
	return e != nil && e.Status != nil && *e.Status == ExceptionStatusCancelled
}

// IsDeleted reports a silent removal of the occurrence.
func (e *ScheduleException) IsDeleted() bool {
	return e != nil && e.Status != nil && *e.Status == ExceptionStatusDeleted
}

// Terminal reports whether the exception can no longer change status.
func (e *ScheduleException) Terminal() bool {
	return e.IsCancelled() || e.IsDeleted()
}

// HasOverrides reports whether any per-date parameter override is present.
func (e *ScheduleException) HasOverrides() bool {
	if e == nil {
		return false
	}
	return e.NewStartTime != nil || e.NewDurationMinutes != nil ||
		e.NewCoachID != nil || e.NewMaxParticipants != nil
}
