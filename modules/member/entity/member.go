package entity

import (
	"time"

	"github.com/google/uuid"
)

// Member is the slim projection of a participant profile the booking
// engine needs: where they train and which membership they hold. Profile
// management itself lives in another service.
type Member struct {
	ID             uuid.UUID `db:"id" json:"id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Email          string    `db:"email" json:"email"`
	LocationID     uuid.UUID `db:"location_id" json:"location_id"`
	MembershipType string    `db:"membership_type" json:"membership_type"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// MembershipRestriction maps a (membership type, class category) pair onto
// a restriction behavior: none, hide, or show_lock.
type MembershipRestriction struct {
	MembershipType string `db:"membership_type" json:"membership_type"`
	Category       string `db:"category" json:"category"`
	Behavior       string `db:"behavior" json:"behavior"`
}
