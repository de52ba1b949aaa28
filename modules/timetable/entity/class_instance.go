package entity

import (
	"time"

	"github.com/google/uuid"
)

// Restriction is what the member's membership says about a class category.
// The engine only surfaces it; enforcement is a UI concern.
type Restriction string

const (
	RestrictionNone     Restriction = "none"
	RestrictionHide     Restriction = "hide"
	RestrictionShowLock Restriction = "show_lock"
)

// ClassInstance is one concrete occurrence of a recurring schedule on a
// specific date. It is derived at read time and never persisted; identity
// is the (schedule_id, date) pair.
type ClassInstance struct {
	InstanceID        string    `json:"instance_id"` // scheduleID + "-" + date
	ScheduleID        string    `json:"schedule_id"`
	Date              time.Time `json:"date"`
	StartDateTime     time.Time `json:"start_date_time"`
	EndDateTime       time.Time `json:"end_date_time"`
	LocationID        uuid.UUID `json:"location_id"`
	ClassDefinitionID string    `json:"class_definition_id"`
	CoachID           uuid.UUID `json:"coach_id"`
	MaxParticipants   int       `json:"max_participants"`
	HasWaitlist       bool      `json:"has_waitlist"`
	Cancelled         bool      `json:"cancelled"`
	SpecialLabel      *string   `json:"special_label,omitempty"`

	// Read-model fields the service fills in after expansion.
	ClassName       string      `json:"class_name,omitempty"`
	Category        string      `json:"category,omitempty"`
	Color           string      `json:"color,omitempty"`
	BookedCount     int         `json:"booked_count"`
	WaitlistedCount int         `json:"waitlisted_count"`
	AvailableSpots  int         `json:"available_spots"`
	Restriction     Restriction `json:"restriction,omitempty"`
	IsMine          bool        `json:"is_mine"`
}
