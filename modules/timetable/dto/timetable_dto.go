package dto

import (
	"time"

	"github.com/google/uuid"

	bookingEntity "studio-api/modules/booking/entity"
	"studio-api/modules/timetable/entity"
)

// TimetableResponse is one materialized window of class instances.
type TimetableResponse struct {
	LocationID uuid.UUID              `json:"location_id"`
	From       string                 `json:"from"` // YYYY-MM-DD
	Days       int                    `json:"days"`
	Instances  []entity.ClassInstance `json:"instances"`
}

// AttendanceEntry is one booking on an instance's roster. Position is only
// set for waitlisted entries and is computed from booking order, never stored.
type AttendanceEntry struct {
	BookingID     string                      `json:"booking_id"`
	ParticipantID uuid.UUID                   `json:"participant_id"`
	Status        bookingEntity.BookingStatus `json:"status"`
	BookingDate   time.Time                   `json:"booking_date"`
	Position      int                         `json:"position,omitempty"`
}

// InstanceDetailResponse is the ledger read model for one instance: the
// effective parameters plus the partitioned roster.
type InstanceDetailResponse struct {
	Instance   entity.ClassInstance `json:"instance"`
	Booked     []AttendanceEntry    `json:"booked"`
	Waitlisted []AttendanceEntry    `json:"waitlisted"`
}

func ToAttendanceEntry(b *bookingEntity.Booking, position int) AttendanceEntry {
	return AttendanceEntry{
		BookingID:     b.ID,
		ParticipantID: b.ParticipantID,
		Status:        b.Status,
		BookingDate:   b.BookingDate,
		Position:      position,
	}
}
