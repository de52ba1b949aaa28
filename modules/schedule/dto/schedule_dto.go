package dto

import (
	"time"

	"github.com/google/uuid"

	"studio-api/core/constants"
	"studio-api/modules/schedule/entity"
)

// ===================== Request DTOs =====================

// CreateScheduleRequest creates a weekly recurring schedule.
type CreateScheduleRequest struct {
	LocationID        string `json:"location_id" validate:"required"`
	ClassDefinitionID string `json:"class_definition_id" validate:"required"`
	CoachID           string `json:"coach_id" validate:"required"`
	Weekdays          []int  `json:"weekdays" validate:"required"`   // ISO: 1=Mon … 7=Sun
	StartTime         string `json:"start_time" validate:"required"` // HH:MM
	DurationMinutes   int    `json:"duration_minutes"`
	MaxParticipants   int    `json:"max_participants" validate:"required,min=1"`
	StartDate         string `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate           string `json:"end_date" validate:"required"`
	// HasWaitlist defaults to the class definition's flag when omitted;
	// after creation the schedule-level value is authoritative.
	HasWaitlist  *bool  `json:"has_waitlist"`
	SpecialLabel string `json:"special_label"`
}

// UpdateScheduleRequest edits the template going forward. Past instances'
// booking history is keyed by (schedule, date) and stays untouched.
type UpdateScheduleRequest struct {
	CoachID         string  `json:"coach_id"`
	Weekdays        []int   `json:"weekdays"`
	StartTime       string  `json:"start_time"`
	DurationMinutes int     `json:"duration_minutes"`
	MaxParticipants int     `json:"max_participants"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	HasWaitlist     *bool   `json:"has_waitlist"`
	SpecialLabel    *string `json:"special_label"`
}

// EditInstanceRequest overrides a single date without touching the template.
type EditInstanceRequest struct {
	NewStartTime       *string `json:"new_start_time,omitempty"` // HH:MM
	NewDurationMinutes *int    `json:"new_duration_minutes,omitempty"`
	NewCoachID         *string `json:"new_coach_id,omitempty"`
	NewMaxParticipants *int    `json:"new_max_participants,omitempty"`
	Notify             bool    `json:"notify"`
}

// ===================== Response DTOs =====================

type ScheduleResponse struct {
	ID                string    `json:"id"`
	LocationID        uuid.UUID `json:"location_id"`
	ClassDefinitionID string    `json:"class_definition_id"`
	CoachID           uuid.UUID `json:"coach_id"`
	Weekdays          []int     `json:"weekdays"`
	StartTime         string    `json:"start_time"`
	DurationMinutes   int       `json:"duration_minutes"`
	MaxParticipants   int       `json:"max_participants"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	HasWaitlist       bool      `json:"has_waitlist"`
	SpecialLabel      string    `json:"special_label,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type ExceptionResponse struct {
	ScheduleID         string     `json:"schedule_id"`
	Date               string     `json:"date"`
	Status             string     `json:"status,omitempty"`
	NewStartTime       *string    `json:"new_start_time,omitempty"`
	NewDurationMinutes *int       `json:"new_duration_minutes,omitempty"`
	NewCoachID         *uuid.UUID `json:"new_coach_id,omitempty"`
	NewMaxParticipants *int       `json:"new_max_participants,omitempty"`
}

func ToScheduleResponse(s *entity.RecurringSchedule) *ScheduleResponse {
	weekdays := make([]int, 0, len(s.Weekdays))
	for _, d := range s.Weekdays {
		weekdays = append(weekdays, int(d))
	}

	resp := &ScheduleResponse{
		ID:                s.ID,
		LocationID:        s.LocationID,
		ClassDefinitionID: s.ClassDefinitionID,
		CoachID:           s.CoachID,
		Weekdays:          weekdays,
		StartTime:         s.StartTime,
		DurationMinutes:   s.DurationMinutes,
		MaxParticipants:   s.MaxParticipants,
		StartDate:         s.StartDate.Format(constants.DateLayout),
		EndDate:           s.EndDate.Format(constants.DateLayout),
		HasWaitlist:       s.HasWaitlist,
		CreatedAt:         s.CreatedAt,
	}
	if s.SpecialLabel != nil {
		resp.SpecialLabel = *s.SpecialLabel
	}
	return resp
}

func ToExceptionResponse(e *entity.ScheduleException) *ExceptionResponse {
	resp := &ExceptionResponse{
		ScheduleID:         e.ScheduleID,
		Date:               e.Date.Format(constants.DateLayout),
		NewStartTime:       e.NewStartTime,
		NewDurationMinutes: e.NewDurationMinutes,
		NewCoachID:         e.NewCoachID,
		NewMaxParticipants: e.NewMaxParticipants,
	}
	if e.Status != nil {
		resp.Status = string(*e.Status)
	}
	return resp
}
