package service

import (
	"time"

	"github.com/google/uuid"

	"studio-api/core/errors"
	"studio-api/modules/booking/entity"
)

// LedgerSnapshot is the complete state the state machine needs to decide
// one command: the instance's effective parameters and its active bookings
// in waitlist order. Building it and applying the decision happen under
// the instance's lock, so the snapshot cannot go stale mid-command.
type LedgerSnapshot struct {
	ScheduleID      string
	ClassDate       time.Time
	StartDateTime   time.Time
	MaxParticipants int
	HasWaitlist     bool
	Cancelled       bool
	Deleted         bool
	// Active bookings sorted by BookingDate ascending, id as tiebreak.
	Active []entity.Booking
}

// BookedCount counts bookings that occupy a spot (BOOKED or CHECKED_IN).
func (s *LedgerSnapshot) BookedCount() int {
	count := 0
	for i := range s.Active {
		if s.Active[i].OccupiesSpot() {
			count++
		}
	}
	return count
}

// AvailableSpots may be negative when a capacity override undercuts the
// existing roster; the instance then admits nobody until attrition.
func (s *LedgerSnapshot) AvailableSpots() int {
	return s.MaxParticipants - s.BookedCount()
}

// EarliestWaitlisted returns the promotion candidate: the waitlisted
// booking with the smallest booking date. Position is always computed from
// order, never stored.
func (s *LedgerSnapshot) EarliestWaitlisted() *entity.Booking {
	for i := range s.Active {
		if s.Active[i].Status == entity.BookingStatusWaitlisted {
			return &s.Active[i]
		}
	}
	return nil
}

// ActiveFor finds the participant's active booking on this instance, if any.
func (s *LedgerSnapshot) ActiveFor(participantID uuid.UUID) *entity.Booking {
	for i := range s.Active {
		if s.Active[i].ParticipantID == participantID {
			return &s.Active[i]
		}
	}
	return nil
}

// decideBook validates a Book command and returns the status the new
// booking record gets.
func decideBook(snap *LedgerSnapshot, participantID uuid.UUID) (entity.BookingStatus, *errors.AppError) {
	if snap.Deleted || snap.Cancelled {
		return "", errors.NewAppError(errors.ErrInstanceGone, "This class is no longer bookable", nil)
	}
	if snap.ActiveFor(participantID) != nil {
		return "", errors.NewAppError(errors.ErrAlreadyBooked, "You already have a booking for this class", nil)
	}

	spots := snap.AvailableSpots()
	if spots > 0 {
		return entity.BookingStatusBooked, nil
	}
	// Exactly full spills onto the waitlist. An over-capacity instance
	// (capacity override below the roster) admits nobody at all until
	// attrition brings it back under the cap.
	if spots == 0 && snap.HasWaitlist {
		return entity.BookingStatusWaitlisted, nil
	}
	return "", errors.NewAppError(errors.ErrClassFull, "Class is full", nil)
}

// decideCancel validates a CancelBooking command against the cutoff rule
// and determines the automatic waitlist promotion, the one case where a
// cancellation implies a second transition. Staff cancellations bypass the
// cutoff.
func decideCancel(snap *LedgerSnapshot, booking *entity.Booking, byStaff bool, now time.Time, cutoff time.Duration) (reason string, promote *entity.Booking, appErr *errors.AppError) {
	if !booking.IsActive() {
		return "", nil, errors.NewAppError(errors.ErrNotFound, "Booking is not active", nil)
	}

	reason = entity.CancelReasonCoach
	if !byStaff {
		reason = entity.CancelReasonParticipant
		// The boundary is inclusive: at exactly start − cutoff the window
		// has closed.
		if booking.OccupiesSpot() && !now.Before(snap.StartDateTime.Add(-cutoff)) {
			return "", nil, errors.NewAppError(errors.ErrPastCutoff, "Too close to class start to cancel", nil)
		}
	}

	// Cancelling a waitlisted booking frees nothing. An over-capacity
	// instance (lowered override) stays at or above its cap after one
	// cancellation, so no spot opens there either.
	if booking.OccupiesSpot() && snap.AvailableSpots() >= 0 {
		if candidate := snap.EarliestWaitlisted(); candidate != nil {
			promote = candidate
		}
	}

	return reason, promote, nil
}

// decidePromote validates an explicit staff promotion.
func decidePromote(snap *LedgerSnapshot, booking *entity.Booking) *errors.AppError {
	if booking.Status != entity.BookingStatusWaitlisted {
		return errors.NewAppError(errors.ErrInvalidInput, "Only waitlisted bookings can be promoted", nil)
	}
	if snap.AvailableSpots() <= 0 {
		return errors.NewAppError(errors.ErrNoCapacity, "No free spot to promote into", nil)
	}
	return nil
}

// decideCheckIn: CHECKED_IN is reachable from BOOKED only.
func decideCheckIn(booking *entity.Booking) *errors.AppError {
	if booking.Status != entity.BookingStatusBooked {
		return errors.NewAppError(errors.ErrInvalidInput, "Only booked participants can be checked in", nil)
	}
	return nil
}

func decideUndoCheckIn(booking *entity.Booking) *errors.AppError {
	if booking.Status != entity.BookingStatusCheckedIn {
		return errors.NewAppError(errors.ErrInvalidInput, "Booking is not checked in", nil)
	}
	return nil
}
