package entity

import (
	"time"

	"github.com/google/uuid"

	"studio-api/core/entity"
)

// BookingStatus is the participant's state for one class instance.
// NONE is never persisted; it is the absence of an active booking.
type BookingStatus string

const (
	BookingStatusBooked     BookingStatus = "BOOKED"
	BookingStatusWaitlisted BookingStatus = "WAITLISTED"
	BookingStatusCheckedIn  BookingStatus = "CHECKED_IN"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// Cancellation reasons recorded on the booking.
const (
	CancelReasonParticipant = "participant_cancelled"
	CancelReasonCoach       = "coach_cancelled"
)

// Booking ties a participant to one (schedule, class_date) instance.
// Re-booking after a cancellation creates a fresh row; BookingDate is the
// creation timestamp and the waitlist sort key.
type Booking struct {
	ParticipantID uuid.UUID     `db:"participant_id" json:"participant_id"`
	ScheduleID    string        `db:"schedule_id" json:"schedule_id"`
	ClassDate     time.Time     `db:"class_date" json:"class_date"`
	Status        BookingStatus `db:"status" json:"status"`
	BookingDate   time.Time     `db:"booking_date" json:"booking_date"`
	CancelReason  *string       `db:"cancel_reason" json:"cancel_reason,omitempty"`
	entity.BaseEntity
}

// IsActive reports whether the booking still counts for the instance.
func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled
}

// OccupiesSpot reports whether the booking consumes capacity.
func (b *Booking) OccupiesSpot() bool {
	return b.Status == BookingStatusBooked || b.Status == BookingStatusCheckedIn
}
