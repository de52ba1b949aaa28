package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"studio-api/core/constants"
	"studio-api/core/database"
	"studio-api/core/errors"
	"studio-api/core/locks"
	"studio-api/core/logger"
	"studio-api/core/utils"
	bookingEntity "studio-api/modules/booking/entity"
	bookingRepo "studio-api/modules/booking/repository"
	classdefRepo "studio-api/modules/classdef/repository"
	notificationDto "studio-api/modules/notification/dto"
	notificationService "studio-api/modules/notification/service"
	"studio-api/modules/schedule/dto"
	"studio-api/modules/schedule/entity"
	"studio-api/modules/schedule/repository"
	timetableService "studio-api/modules/timetable/service"
)

// ScheduleService owns the recurring templates and their per-date
// exceptions. Instance edits never touch the template row; they write an
// exception keyed (schedule_id, date).
type ScheduleService struct {
	repo         repository.ScheduleRepositoryInterface
	bookingRepo  bookingRepo.BookingRepositoryInterface
	classDefRepo classdefRepo.ClassDefRepositoryInterface
	dispatcher   notificationService.Dispatcher
	db           database.IDatabase
}

type ScheduleServiceInterface interface {
	Create(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, *errors.AppError)
	GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, *errors.AppError)
	ListByLocation(ctx context.Context, locationID uuid.UUID) ([]dto.ScheduleResponse, *errors.AppError)
	Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, *errors.AppError)
	Delete(ctx context.Context, id string) *errors.AppError

	EditInstance(ctx context.Context, scheduleID string, date time.Time, req *dto.EditInstanceRequest) (*dto.ExceptionResponse, *errors.AppError)
	CancelInstance(ctx context.Context, scheduleID string, date time.Time) (*dto.ExceptionResponse, *errors.AppError)
	DeleteInstance(ctx context.Context, scheduleID string, date time.Time) *errors.AppError
}

func NewScheduleService(
	repo repository.ScheduleRepositoryInterface,
	bookings bookingRepo.BookingRepositoryInterface,
	classDefs classdefRepo.ClassDefRepositoryInterface,
	dispatcher notificationService.Dispatcher,
	db database.IDatabase,
) ScheduleServiceInterface {
	return &ScheduleService{
		repo:         repo,
		bookingRepo:  bookings,
		classDefRepo: classDefs,
		dispatcher:   dispatcher,
		db:           db,
	}
}

// ===================== Template CRUD =====================

func (s *ScheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, *errors.AppError) {
	logger.Info("ScheduleService:Create:Started", "class_definition_id", req.ClassDefinitionID)

	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid location id", err)
	}
	coachID, err := uuid.Parse(req.CoachID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid coach id", err)
	}

	def, err := s.classDefRepo.GetByID(ctx, req.ClassDefinitionID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load class definition", err)
	}
	if def == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Class definition not found", nil)
	}

	weekdays, appErr := validateWeekdays(req.Weekdays)
	if appErr != nil {
		return nil, appErr
	}
	if appErr := validateTimeOfDay(req.StartTime); appErr != nil {
		return nil, appErr
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = def.DefaultDurationMinutes
	}
	if duration <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Duration must be positive", nil)
	}
	if req.MaxParticipants <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Max participants must be positive", nil)
	}

	startDate, appErr := parseDate(req.StartDate, "start_date")
	if appErr != nil {
		return nil, appErr
	}
	endDate, appErr := parseDate(req.EndDate, "end_date")
	if appErr != nil {
		return nil, appErr
	}
	if endDate.Before(startDate) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "End date must not be before start date", nil)
	}

	hasWaitlist := def.HasWaitlist
	if req.HasWaitlist != nil {
		hasWaitlist = *req.HasWaitlist
	}

	now := time.Now()
	schedule := &entity.RecurringSchedule{
		LocationID:        locationID,
		ClassDefinitionID: req.ClassDefinitionID,
		CoachID:           coachID,
		Weekdays:          weekdays,
		StartTime:         req.StartTime,
		DurationMinutes:   duration,
		MaxParticipants:   req.MaxParticipants,
		StartDate:         startDate,
		EndDate:           endDate,
		HasWaitlist:       hasWaitlist,
	}
	if req.SpecialLabel != "" {
		schedule.SpecialLabel = &req.SpecialLabel
	}
	schedule.ID = utils.GenerateID()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create schedule", err)
	}

	logger.Info("ScheduleService:Create:Success", "schedule_id", schedule.ID)
	return dto.ToScheduleResponse(schedule), nil
}

func (s *ScheduleService) GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, *errors.AppError) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedule", err)
	}
	if schedule == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Schedule not found", nil)
	}
	return dto.ToScheduleResponse(schedule), nil
}

func (s *ScheduleService) ListByLocation(ctx context.Context, locationID uuid.UUID) ([]dto.ScheduleResponse, *errors.AppError) {
	schedules, err := s.repo.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list schedules", err)
	}

	responses := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		responses = append(responses, *dto.ToScheduleResponse(&schedules[i]))
	}
	return responses, nil
}

// Update rewrites the template. Future dates re-materialize from the new
// values; instances on past dates keep their booking history because it is
// keyed by (schedule_id, class_date), not by template content.
func (s *ScheduleService) Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, *errors.AppError) {
	logger.Info("ScheduleService:Update:Started", "schedule_id", id)

	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedule", err)
	}
	if schedule == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Schedule not found", nil)
	}

	if req.CoachID != "" {
		coachID, err := uuid.Parse(req.CoachID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid coach id", err)
		}
		schedule.CoachID = coachID
	}
	if req.Weekdays != nil {
		weekdays, appErr := validateWeekdays(req.Weekdays)
		if appErr != nil {
			return nil, appErr
		}
		schedule.Weekdays = weekdays
	}
	if req.StartTime != "" {
		if appErr := validateTimeOfDay(req.StartTime); appErr != nil {
			return nil, appErr
		}
		schedule.StartTime = req.StartTime
	}
	if req.DurationMinutes != 0 {
		if req.DurationMinutes < 0 {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Duration must be positive", nil)
		}
		schedule.DurationMinutes = req.DurationMinutes
	}
	// Lowering capacity below the current booked count is allowed; the
	// instance reads negative availability and nobody gets evicted.
	if req.MaxParticipants != 0 {
		if req.MaxParticipants < 0 {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Max participants must be positive", nil)
		}
		schedule.MaxParticipants = req.MaxParticipants
	}
	if req.StartDate != "" {
		startDate, appErr := parseDate(req.StartDate, "start_date")
		if appErr != nil {
			return nil, appErr
		}
		schedule.StartDate = startDate
	}
	if req.EndDate != "" {
		endDate, appErr := parseDate(req.EndDate, "end_date")
		if appErr != nil {
			return nil, appErr
		}
		schedule.EndDate = endDate
	}
	if schedule.EndDate.Before(schedule.StartDate) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "End date must not be before start date", nil)
	}
	if req.HasWaitlist != nil {
		schedule.HasWaitlist = *req.HasWaitlist
	}
	if req.SpecialLabel != nil {
		if *req.SpecialLabel == "" {
			schedule.SpecialLabel = nil
		} else {
			schedule.SpecialLabel = req.SpecialLabel
		}
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update schedule", err)
	}

	logger.Info("ScheduleService:Update:Success", "schedule_id", id)
	return dto.ToScheduleResponse(schedule), nil
}

func (s *ScheduleService) Delete(ctx context.Context, id string) *errors.AppError {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.NewAppError(errors.ErrGetFailed, "Failed to load schedule", err)
	}
	if schedule == nil {
		return errors.NewAppError(errors.ErrNotFound, "Schedule not found", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete schedule", err)
	}
	logger.Info("ScheduleService:Delete:Success", "schedule_id", id)
	return nil
}

// ===================== Instance operations =====================

// EditInstance overrides parameters of a single occurrence. Supplied fields
// merge over any previous override for the same date; omitted fields keep
// their earlier override value. Fails once the instance is cancelled or
// deleted.
func (s *ScheduleService) EditInstance(ctx context.Context, scheduleID string, date time.Time, req *dto.EditInstanceRequest) (*dto.ExceptionResponse, *errors.AppError) {
	logger.Info("ScheduleService:EditInstance:Started", "schedule_id", scheduleID, "date", date.Format(constants.DateLayout))

	unlock := locks.Instance(timetableService.InstanceID(scheduleID, date))
	defer unlock()

	schedule, existing, appErr := s.instanceFor(ctx, scheduleID, date)
	if appErr != nil {
		return nil, appErr
	}

	if req.NewStartTime != nil {
		if appErr := validateTimeOfDay(*req.NewStartTime); appErr != nil {
			return nil, appErr
		}
	}
	if req.NewDurationMinutes != nil && *req.NewDurationMinutes <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Duration must be positive", nil)
	}
	if req.NewMaxParticipants != nil && *req.NewMaxParticipants <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Max participants must be positive", nil)
	}
	var newCoachID *uuid.UUID
	if req.NewCoachID != nil {
		coachID, err := uuid.Parse(*req.NewCoachID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid coach id", err)
		}
		newCoachID = &coachID
	}

	exception := mergeException(existing, scheduleID, date)
	if req.NewStartTime != nil {
		exception.NewStartTime = req.NewStartTime
	}
	if req.NewDurationMinutes != nil {
		exception.NewDurationMinutes = req.NewDurationMinutes
	}
	if newCoachID != nil {
		exception.NewCoachID = newCoachID
	}
	if req.NewMaxParticipants != nil {
		exception.NewMaxParticipants = req.NewMaxParticipants
	}

	if err := s.repo.UpsertException(ctx, exception); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to save instance override", err)
	}

	if req.Notify {
		affected, err := s.bookingRepo.ListActiveByInstance(ctx, scheduleID, date)
		if err != nil {
			logger.Error("ScheduleService:EditInstance:ListActive", err)
		} else {
			s.dispatchToBookings(ctx, schedule, date, notificationDto.IntentKindInstanceModified, affected)
		}
	}

	logger.Info("ScheduleService:EditInstance:Success", "schedule_id", scheduleID, "date", date.Format(constants.DateLayout))
	return dto.ToExceptionResponse(exception), nil
}

// CancelInstance strikes one occurrence and cascades: every active booking
// on it flips to CANCELLED with reason coach_cancelled in the same
// transaction as the exception write. The instance stays visible in the
// timetable, marked cancelled.
func (s *ScheduleService) CancelInstance(ctx context.Context, scheduleID string, date time.Time) (*dto.ExceptionResponse, *errors.AppError) {
	logger.Info("ScheduleService:CancelInstance:Started", "schedule_id", scheduleID, "date", date.Format(constants.DateLayout))

	// Same per-instance lock as the booking commands: a Book racing this
	// cascade cannot slip in between the exception write and the cancel.
	unlock := locks.Instance(timetableService.InstanceID(scheduleID, date))
	defer unlock()

	schedule, existing, appErr := s.instanceFor(ctx, scheduleID, date)
	if appErr != nil {
		return nil, appErr
	}

	exception := mergeException(existing, scheduleID, date)
	status := entity.ExceptionStatusCancelled
	exception.Status = &status

	var affected []bookingEntity.Booking
	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.UpsertExceptionTx(tx, exception); err != nil {
			return err
		}
		cancelled, err := s.bookingRepo.CancelAllActiveForInstanceTx(tx, scheduleID, date, bookingEntity.CancelReasonCoach)
		if err != nil {
			return err
		}
		affected = cancelled
		return nil
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to cancel instance", err)
	}

	s.dispatchToBookings(ctx, schedule, date, notificationDto.IntentKindClassCancelled, affected)

	logger.Info("ScheduleService:CancelInstance:Success",
		"schedule_id", scheduleID, "date", date.Format(constants.DateLayout), "cancelled_bookings", len(affected))
	return dto.ToExceptionResponse(exception), nil
}

// DeleteInstance removes one occurrence from every read path as if it never
// existed. Intended for fixing scheduling mistakes before anyone booked:
// there is no cascade and no notification, so existing bookings are left
// pointing at a gone instance.
func (s *ScheduleService) DeleteInstance(ctx context.Context, scheduleID string, date time.Time) *errors.AppError {
	logger.Info("ScheduleService:DeleteInstance:Started", "schedule_id", scheduleID, "date", date.Format(constants.DateLayout))

	unlock := locks.Instance(timetableService.InstanceID(scheduleID, date))
	defer unlock()

	_, existing, appErr := s.instanceFor(ctx, scheduleID, date)
	if appErr != nil {
		return appErr
	}

	exception := mergeException(existing, scheduleID, date)
	status := entity.ExceptionStatusDeleted
	exception.Status = &status

	if err := s.repo.UpsertException(ctx, exception); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to delete instance", err)
	}

	logger.Info("ScheduleService:DeleteInstance:Success", "schedule_id", scheduleID, "date", date.Format(constants.DateLayout))
	return nil
}

// instanceFor loads the schedule, checks the date actually materializes,
// and rejects instances already in a terminal state.
func (s *ScheduleService) instanceFor(ctx context.Context, scheduleID string, date time.Time) (*entity.RecurringSchedule, *entity.ScheduleException, *errors.AppError) {
	schedule, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedule", err)
	}
	if schedule == nil {
		return nil, nil, errors.NewAppError(errors.ErrNotFound, "Schedule not found", nil)
	}
	if !schedule.RunsOn(date) {
		return nil, nil, errors.NewAppError(errors.ErrNotFound, "Schedule has no occurrence on this date", nil)
	}

	existing, err := s.repo.GetException(ctx, scheduleID, date)
	if err != nil {
		return nil, nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load instance state", err)
	}
	if existing.Terminal() {
		return nil, nil, errors.NewAppError(errors.ErrAlreadyExists, "Instance is already cancelled or deleted", nil)
	}
	return schedule, existing, nil
}

func (s *ScheduleService) dispatchToBookings(ctx context.Context, schedule *entity.RecurringSchedule, date time.Time, kind string, bookings []bookingEntity.Booking) {
	if len(bookings) == 0 {
		return
	}

	payload := map[string]any{
		"schedule_id": schedule.ID,
		"class_date":  date.Format(constants.DateLayout),
	}
	if def, err := s.classDefRepo.GetByID(ctx, schedule.ClassDefinitionID); err == nil && def != nil {
		payload["class_name"] = def.Name
	}

	intents := make([]notificationDto.Intent, 0, len(bookings))
	for i := range bookings {
		intents = append(intents, notificationDto.Intent{
			ParticipantID: bookings[i].ParticipantID,
			Kind:          kind,
			Payload:       payload,
		})
	}
	s.dispatcher.Dispatch(ctx, intents...)
}

// mergeException starts a new exception row from the existing one so an
// override edit or a cancellation keeps earlier overrides intact.
func mergeException(existing *entity.ScheduleException, scheduleID string, date time.Time) *entity.ScheduleException {
	now := time.Now()
	if existing != nil {
		merged := *existing
		merged.UpdatedAt = now
		return &merged
	}
	return &entity.ScheduleException{
		ID:         utils.GenerateID(),
		ScheduleID: scheduleID,
		Date:       date,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ===================== Validation helpers =====================

func validateWeekdays(weekdays []int) (pq.Int64Array, *errors.AppError) {
	if len(weekdays) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "At least one weekday is required", nil)
	}
	seen := map[int]bool{}
	out := make(pq.Int64Array, 0, len(weekdays))
	for _, d := range weekdays {
		if d < 1 || d > 7 {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Weekdays must be ISO days 1..7", nil)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, int64(d))
	}
	return out, nil
}

func validateTimeOfDay(value string) *errors.AppError {
	if _, err := time.Parse(constants.TimeOfDayLayout, value); err != nil {
		return errors.NewAppError(errors.ErrInvalidInput, "Start time must be HH:MM", err)
	}
	return nil
}

func parseDate(value, field string) (time.Time, *errors.AppError) {
	date, err := time.Parse(constants.DateLayout, value)
	if err != nil {
		return time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid "+field+", expected YYYY-MM-DD", err)
	}
	return date, nil
}
