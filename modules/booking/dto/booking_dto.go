package dto

import (
	"time"

	"github.com/google/uuid"

	"studio-api/modules/booking/entity"
)

// BookRequest creates a booking for one class instance.
type BookRequest struct {
	ScheduleID string `json:"schedule_id" validate:"required"`
	ClassDate  string `json:"class_date" validate:"required"` // YYYY-MM-DD
	// ParticipantID is honored for staff callers booking on a member's
	// behalf; members always book for themselves.
	ParticipantID string `json:"participant_id,omitempty"`
}

// BookingResponse is the booking state returned after every command.
type BookingResponse struct {
	ID            string    `json:"id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	ScheduleID    string    `json:"schedule_id"`
	ClassDate     string    `json:"class_date"`
	Status        string    `json:"status"`
	BookingDate   time.Time `json:"booking_date"`
	CancelReason  string    `json:"cancel_reason,omitempty"`
	// WaitlistPosition is computed from booking order; 0 when not waitlisted.
	WaitlistPosition int `json:"waitlist_position,omitempty"`
}

func ToBookingResponse(b *entity.Booking, waitlistPosition int) *BookingResponse {
	resp := &BookingResponse{
		ID:               b.ID,
		ParticipantID:    b.ParticipantID,
		ScheduleID:       b.ScheduleID,
		ClassDate:        b.ClassDate.Format("2006-01-02"),
		Status:           string(b.Status),
		BookingDate:      b.BookingDate,
		WaitlistPosition: waitlistPosition,
	}
	if b.CancelReason != nil {
		resp.CancelReason = *b.CancelReason
	}
	return resp
}
