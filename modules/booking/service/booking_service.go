package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"studio-api/core/clock"
	"studio-api/core/constants"
	"studio-api/core/database"
	coreEntity "studio-api/core/entity"
	"studio-api/core/errors"
	"studio-api/core/locks"
	"studio-api/core/logger"
	"studio-api/core/utils"
	"studio-api/modules/booking/dto"
	"studio-api/modules/booking/entity"
	"studio-api/modules/booking/repository"
	classdefRepo "studio-api/modules/classdef/repository"
	notificationDto "studio-api/modules/notification/dto"
	notificationService "studio-api/modules/notification/service"
	scheduleEntity "studio-api/modules/schedule/entity"
	scheduleRepo "studio-api/modules/schedule/repository"
	timetableService "studio-api/modules/timetable/service"
)

// BookingService is the write side of the booking engine: it validates and
// applies booking commands against one instance's ledger at a time. All
// commands for the same (schedule, date) run under that instance's lock,
// and any cascaded transition commits in the same transaction as the
// primary write.
type BookingService struct {
	repo         repository.BookingRepositoryInterface
	scheduleRepo scheduleRepo.ScheduleRepositoryInterface
	classDefRepo classdefRepo.ClassDefRepositoryInterface
	dispatcher   notificationService.Dispatcher
	materializer *timetableService.Materializer
	db           database.IDatabase
	clock        clock.Clock
	cutoff       time.Duration
}

type BookingServiceInterface interface {
	Book(ctx context.Context, participantID uuid.UUID, scheduleID string, classDate time.Time) (*dto.BookingResponse, *errors.AppError)
	CancelBooking(ctx context.Context, bookingID string, actorID uuid.UUID, byStaff bool) (*dto.BookingResponse, *errors.AppError)
	PromoteFromWaitlist(ctx context.Context, bookingID string) (*dto.BookingResponse, *errors.AppError)
	CheckIn(ctx context.Context, bookingID string) (*dto.BookingResponse, *errors.AppError)
	UndoCheckIn(ctx context.Context, bookingID string) (*dto.BookingResponse, *errors.AppError)
	GetMyBookings(ctx context.Context, participantID uuid.UUID) ([]dto.BookingResponse, *errors.AppError)
}

func NewBookingService(
	repo repository.BookingRepositoryInterface,
	schedules scheduleRepo.ScheduleRepositoryInterface,
	classDefs classdefRepo.ClassDefRepositoryInterface,
	dispatcher notificationService.Dispatcher,
	materializer *timetableService.Materializer,
	db database.IDatabase,
	clk clock.Clock,
	cutoffHours int,
) BookingServiceInterface {
	return &BookingService{
		repo:         repo,
		scheduleRepo: schedules,
		classDefRepo: classDefs,
		dispatcher:   dispatcher,
		materializer: materializer,
		db:           db,
		clock:        clk,
		cutoff:       time.Duration(cutoffHours) * time.Hour,
	}
}

// snapshot loads the instance's effective parameters and active bookings.
// Must be called under the instance lock.
func (s *BookingService) snapshot(ctx context.Context, scheduleID string, classDate time.Time) (*LedgerSnapshot, *scheduleEntity.RecurringSchedule, *errors.AppError) {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedule", err)
	}
	if schedule == nil {
		return nil, nil, errors.NewAppError(errors.ErrNotFound, "Schedule not found", nil)
	}

	day := time.Date(classDate.Year(), classDate.Month(), classDate.Day(), 0, 0, 0, 0, s.materializer.Location)
	if !schedule.RunsOn(day) {
		return nil, nil, errors.NewAppError(errors.ErrNotFound, "No class instance on this date", nil)
	}

	exception, err := s.scheduleRepo.GetException(ctx, scheduleID, day)
	if err != nil {
		return nil, nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load exception", err)
	}

	// A deleted occurrence still needs the base times in the snapshot so
	// staff cleanup commands on orphaned bookings can resolve them.
	occ, ok := s.materializer.EffectiveOccurrence(schedule, exception, day)
	if !ok {
		occ, _ = s.materializer.EffectiveOccurrence(schedule, nil, day)
	}
	if occ == nil {
		return nil, nil, errors.NewAppError(errors.ErrInternalServer, "Schedule has an invalid start time", nil)
	}

	active, err := s.repo.ListActiveByInstance(ctx, scheduleID, day)
	if err != nil {
		return nil, nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load bookings", err)
	}

	return &LedgerSnapshot{
		ScheduleID:      scheduleID,
		ClassDate:       day,
		StartDateTime:   occ.StartDateTime,
		MaxParticipants: occ.MaxParticipants,
		HasWaitlist:     occ.HasWaitlist,
		Cancelled:       exception.IsCancelled(),
		Deleted:         exception.IsDeleted(),
		Active:          active,
	}, schedule, nil
}

// Book creates a booking, waitlisting when the class is full and a
// waitlist exists.
func (s *BookingService) Book(ctx context.Context, participantID uuid.UUID, scheduleID string, classDate time.Time) (*dto.BookingResponse, *errors.AppError) {
	day := time.Date(classDate.Year(), classDate.Month(), classDate.Day(), 0, 0, 0, 0, s.materializer.Location)

	unlock := locks.Instance(timetableService.InstanceID(scheduleID, day))
	defer unlock()

	snap, _, appErr := s.snapshot(ctx, scheduleID, day)
	if appErr != nil {
		return nil, appErr
	}

	status, appErr := decideBook(snap, participantID)
	if appErr != nil {
		return nil, appErr
	}

	now := s.clock.Now()
	booking := &entity.Booking{
		ParticipantID: participantID,
		ScheduleID:    scheduleID,
		ClassDate:     day,
		Status:        status,
		BookingDate:   now,
		BaseEntity: coreEntity.BaseEntity{
			ID:        utils.GenerateID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create booking", err)
	}

	position := 0
	if status == entity.BookingStatusWaitlisted {
		for i := range snap.Active {
			if snap.Active[i].Status == entity.BookingStatusWaitlisted {
				position++
			}
		}
		position++ // appended after the current tail
	}

	logger.Info("BookingService:Book:Created",
		"booking_id", booking.ID,
		"participant_id", participantID,
		"schedule_id", scheduleID,
		"class_date", day.Format(constants.DateLayout),
		"status", status)

	return dto.ToBookingResponse(booking, position), nil
}

// CancelBooking cancels an active booking. Participant-initiated
// cancellation of a spot-occupying booking is subject to the cutoff
// window; staff bypass it. Freeing a spot promotes the earliest
// waitlisted booking in the same transaction.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, actorID uuid.UUID, byStaff bool) (*dto.BookingResponse, *errors.AppError) {
	booking, appErr := s.getBooking(ctx, bookingID)
	if appErr != nil {
		return nil, appErr
	}
	if !byStaff && booking.ParticipantID != actorID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Cannot cancel another member's booking", nil)
	}

	unlock := locks.Instance(timetableService.InstanceID(booking.ScheduleID, booking.ClassDate))
	defer unlock()

	// Reload under the lock; the booking may have changed while we waited.
	booking, appErr = s.getBooking(ctx, bookingID)
	if appErr != nil {
		return nil, appErr
	}

	snap, schedule, appErr := s.snapshot(ctx, booking.ScheduleID, booking.ClassDate)
	if appErr != nil {
		return nil, appErr
	}

	reason, promote, appErr := decideCancel(snap, booking, byStaff, s.clock.Now(), s.cutoff)
	if appErr != nil {
		return nil, appErr
	}

	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.UpdateStatusTx(tx, booking.ID, entity.BookingStatusCancelled, &reason); err != nil {
			return err
		}
		if promote != nil {
			return s.repo.UpdateStatusTx(tx, promote.ID, entity.BookingStatusBooked, nil)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to cancel booking", err)
	}

	if promote != nil {
		logger.Info("BookingService:CancelBooking:WaitlistPromoted",
			"promoted_booking_id", promote.ID,
			"participant_id", promote.ParticipantID)
		s.dispatcher.Dispatch(ctx, notificationDto.Intent{
			ParticipantID: promote.ParticipantID,
			Kind:          notificationDto.IntentKindWaitlistPromoted,
			Payload:       s.intentPayload(ctx, schedule, snap.ClassDate),
		})
	}

	booking.Status = entity.BookingStatusCancelled
	booking.CancelReason = &reason
	return dto.ToBookingResponse(booking, 0), nil
}

// PromoteFromWaitlist is the explicit staff promotion of one waitlisted
// booking into a free spot.
func (s *BookingService) PromoteFromWaitlist(ctx context.Context, bookingID string) (*dto.BookingResponse, *errors.AppError) {
	booking, appErr := s.getBooking(ctx, bookingID)
	if appErr != nil {
		return nil, appErr
	}

	unlock := locks.Instance(timetableService.InstanceID(booking.ScheduleID, booking.ClassDate))
	defer unlock()

	booking, appErr = s.getBooking(ctx, bookingID)
	if appErr != nil {
		return nil, appErr
	}

	snap, schedule, appErr := s.snapshot(ctx, booking.ScheduleID, booking.ClassDate)
	if appErr != nil {
		return nil, appErr
	}

	if appErr := decidePromote(snap, booking); appErr != nil {
		return nil, appErr
	}

	if err := s.repo.UpdateStatus(ctx, booking.ID, entity.BookingStatusBooked, nil); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to promote booking", err)
	}

	s.dispatcher.Dispatch(ctx, notificationDto.Intent{
		ParticipantID: booking.ParticipantID,
		Kind:          notificationDto.IntentKindWaitlistPromoted,
		Payload:       s.intentPayload(ctx, schedule, snap.ClassDate),
	})

	booking.Status = entity.BookingStatusBooked
	return dto.ToBookingResponse(booking, 0), nil
}

// CheckIn marks a booked participant as present. No capacity implication:
// the spot was already counted.
func (s *BookingService) CheckIn(ctx context.Context, bookingID string) (*dto.BookingResponse, *errors.AppError) {
	return s.toggleCheckIn(ctx, bookingID, true)
}

// UndoCheckIn reverts a check-in back to BOOKED.
func (s *BookingService) UndoCheckIn(ctx context.Context, bookingID string) (*dto.BookingResponse, *errors.AppError) {
	return s.toggleCheckIn(ctx, bookingID, false)
}

func (s *BookingService) toggleCheckIn(ctx context.Context, bookingID string, checkIn bool) (*dto.BookingResponse, *errors.AppError) {
	booking, appErr := s.getBooking(ctx, bookingID)
	if appErr != nil {
		return nil, appErr
	}

	unlock := locks.Instance(timetableService.InstanceID(booking.ScheduleID, booking.ClassDate))
	defer unlock()

	booking, appErr = s.getBooking(ctx, bookingID)
	if appErr != nil {
		return nil, appErr
	}

	var target entity.BookingStatus
	if checkIn {
		if appErr := decideCheckIn(booking); appErr != nil {
			return nil, appErr
		}
		target = entity.BookingStatusCheckedIn
	} else {
		if appErr := decideUndoCheckIn(booking); appErr != nil {
			return nil, appErr
		}
		target = entity.BookingStatusBooked
	}

	if err := s.repo.UpdateStatus(ctx, booking.ID, target, nil); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update booking", err)
	}

	booking.Status = target
	return dto.ToBookingResponse(booking, 0), nil
}

func (s *BookingService) GetMyBookings(ctx context.Context, participantID uuid.UUID) ([]dto.BookingResponse, *errors.AppError) {
	from := s.clock.Now().AddDate(0, 0, -1)
	bookings, err := s.repo.ListByParticipant(ctx, participantID, from)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list bookings", err)
	}

	result := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		result = append(result, *dto.ToBookingResponse(&bookings[i], 0))
	}
	return result, nil
}

func (s *BookingService) getBooking(ctx context.Context, bookingID string) (*entity.Booking, *errors.AppError) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load booking", err)
	}
	if booking == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	return booking, nil
}

// intentPayload builds the instance context notification copy renders from.
func (s *BookingService) intentPayload(ctx context.Context, schedule *scheduleEntity.RecurringSchedule, classDate time.Time) map[string]any {
	payload := map[string]any{
		"schedule_id": schedule.ID,
		"class_date":  classDate.Format(constants.DateLayout),
	}
	if def, err := s.classDefRepo.GetByID(ctx, schedule.ClassDefinitionID); err == nil && def != nil {
		payload["class_name"] = def.Name
	}
	return payload
}
