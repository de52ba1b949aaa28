package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"studio-api/core/clock"
	"studio-api/core/constants"
	"studio-api/core/errors"
	"studio-api/core/logger"
	bookingRepo "studio-api/modules/booking/repository"
	classdefEntity "studio-api/modules/classdef/entity"
	classdefRepo "studio-api/modules/classdef/repository"
	memberService "studio-api/modules/member/service"
	scheduleEntity "studio-api/modules/schedule/entity"
	scheduleRepo "studio-api/modules/schedule/repository"
	"studio-api/modules/timetable/dto"
	"studio-api/modules/timetable/entity"
)

// View selects which read model a timetable request gets. Participant
// views drop already-started instances and hide-restricted categories;
// management views keep both.
type View string

const (
	ViewParticipant View = "participant"
	ViewManagement  View = "management"
)

type TimetableService struct {
	scheduleRepo scheduleRepo.ScheduleRepositoryInterface
	bookingRepo  bookingRepo.BookingRepositoryInterface
	classDefRepo classdefRepo.ClassDefRepositoryInterface
	members      memberService.MemberServiceInterface
	materializer *Materializer
	clock        clock.Clock
}

type TimetableServiceInterface interface {
	GetTimetable(ctx context.Context, locationID uuid.UUID, from time.Time, days int, viewerID uuid.UUID, view View) (*dto.TimetableResponse, *errors.AppError)
	GetInstanceDetail(ctx context.Context, scheduleID string, date time.Time) (*dto.InstanceDetailResponse, *errors.AppError)
}

func NewTimetableService(
	schedules scheduleRepo.ScheduleRepositoryInterface,
	bookings bookingRepo.BookingRepositoryInterface,
	classDefs classdefRepo.ClassDefRepositoryInterface,
	members memberService.MemberServiceInterface,
	materializer *Materializer,
	clk clock.Clock,
) TimetableServiceInterface {
	return &TimetableService{
		scheduleRepo: schedules,
		bookingRepo:  bookings,
		classDefRepo: classDefs,
		members:      members,
		materializer: materializer,
		clock:        clk,
	}
}

// GetTimetable materializes the [from, from+days) window for a location.
func (s *TimetableService) GetTimetable(ctx context.Context, locationID uuid.UUID, from time.Time, days int, viewerID uuid.UUID, view View) (*dto.TimetableResponse, *errors.AppError) {
	if days <= 0 {
		days = constants.DefaultTimetableWindowDays
	}
	if days > constants.MaxTimetableWindowDays {
		days = constants.MaxTimetableWindowDays
	}

	windowStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.materializer.Location)
	windowEnd := windowStart.AddDate(0, 0, days-1)

	schedules, err := s.scheduleRepo.ListActiveInWindow(ctx, locationID, windowStart, windowEnd)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedules", err)
	}

	scheduleIDs := make([]string, 0, len(schedules))
	for i := range schedules {
		scheduleIDs = append(scheduleIDs, schedules[i].ID)
	}

	exceptions, err := s.scheduleRepo.ListExceptionsForSchedules(ctx, scheduleIDs, windowStart, windowEnd)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load exceptions", err)
	}

	instances := s.materializer.Expand(schedules, IndexExceptions(exceptions), windowStart, days)

	bookings, err := s.bookingRepo.ListActiveForSchedulesWindow(ctx, scheduleIDs, windowStart, windowEnd)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load bookings", err)
	}

	// Per-instance attendance in one pass; waitlist order is already the
	// repository's booking_date sort.
	type counts struct {
		booked     int
		waitlisted int
		mine       bool
	}
	attendance := make(map[string]*counts)
	for i := range bookings {
		b := &bookings[i]
		key := InstanceID(b.ScheduleID, b.ClassDate)
		c := attendance[key]
		if c == nil {
			c = &counts{}
			attendance[key] = c
		}
		if b.OccupiesSpot() {
			c.booked++
		} else {
			c.waitlisted++
		}
		if viewerID != uuid.Nil && b.ParticipantID == viewerID {
			c.mine = true
		}
	}

	defsByID, appErr := s.classDefinitions(ctx, schedules)
	if appErr != nil {
		return nil, appErr
	}

	restrictions := map[string]entity.Restriction{}
	now := s.clock.Now()

	result := make([]entity.ClassInstance, 0, len(instances))
	for i := range instances {
		instance := instances[i]

		if def := defsByID[instance.ClassDefinitionID]; def != nil {
			instance.ClassName = def.Name
			instance.Category = def.Category
			instance.Color = def.Color
		}

		if c := attendance[instance.InstanceID]; c != nil {
			instance.BookedCount = c.booked
			instance.WaitlistedCount = c.waitlisted
			instance.IsMine = c.mine
		}
		instance.AvailableSpots = instance.MaxParticipants - instance.BookedCount

		if view == ViewParticipant {
			if instance.StartDateTime.Before(now) {
				continue
			}
			restriction, appErr := s.restrictionFor(ctx, restrictions, viewerID, instance.Category)
			if appErr != nil {
				return nil, appErr
			}
			if restriction == entity.RestrictionHide {
				continue
			}
			instance.Restriction = restriction
		} else {
			instance.Restriction = entity.RestrictionNone
		}

		result = append(result, instance)
	}

	logger.Info("TimetableService:GetTimetable:Materialized",
		"location_id", locationID,
		"from", windowStart.Format(constants.DateLayout),
		"days", days,
		"schedules", len(schedules),
		"instances", len(result))

	return &dto.TimetableResponse{
		LocationID: locationID,
		From:       windowStart.Format(constants.DateLayout),
		Days:       days,
		Instances:  result,
	}, nil
}

// GetInstanceDetail is the booking-ledger read model for one instance:
// effective parameters plus the roster partitioned into booked and
// waitlisted (FIFO by booking date).
func (s *TimetableService) GetInstanceDetail(ctx context.Context, scheduleID string, date time.Time) (*dto.InstanceDetailResponse, *errors.AppError) {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedule", err)
	}
	if schedule == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Schedule not found", nil)
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.materializer.Location)

	exception, err := s.scheduleRepo.GetException(ctx, scheduleID, day)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load exception", err)
	}

	instance, ok := s.materializer.EffectiveOccurrence(schedule, exception, day)
	if !ok || !schedule.RunsOn(day) {
		return nil, errors.NewAppError(errors.ErrNotFound, "No class instance on this date", nil)
	}

	if def, err := s.classDefRepo.GetByID(ctx, schedule.ClassDefinitionID); err == nil && def != nil {
		instance.ClassName = def.Name
		instance.Category = def.Category
		instance.Color = def.Color
	}

	bookings, err := s.bookingRepo.ListActiveByInstance(ctx, scheduleID, day)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load bookings", err)
	}

	detail := &dto.InstanceDetailResponse{
		Booked:     []dto.AttendanceEntry{},
		Waitlisted: []dto.AttendanceEntry{},
	}
	for i := range bookings {
		b := &bookings[i]
		if b.OccupiesSpot() {
			detail.Booked = append(detail.Booked, dto.ToAttendanceEntry(b, 0))
		} else {
			detail.Waitlisted = append(detail.Waitlisted, dto.ToAttendanceEntry(b, len(detail.Waitlisted)+1))
		}
	}

	instance.BookedCount = len(detail.Booked)
	instance.WaitlistedCount = len(detail.Waitlisted)
	instance.AvailableSpots = instance.MaxParticipants - instance.BookedCount
	detail.Instance = *instance

	return detail, nil
}

// classDefinitions loads the definitions referenced by a schedule set.
func (s *TimetableService) classDefinitions(ctx context.Context, schedules []scheduleEntity.RecurringSchedule) (map[string]*classdefEntity.ClassDefinition, *errors.AppError) {
	defsByID := make(map[string]*classdefEntity.ClassDefinition)
	for i := range schedules {
		id := schedules[i].ClassDefinitionID
		if _, seen := defsByID[id]; seen {
			continue
		}
		def, err := s.classDefRepo.GetByID(ctx, id)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load class definition", err)
		}
		defsByID[id] = def
	}
	return defsByID, nil
}

// restrictionFor memoizes restriction lookups per category for one request.
func (s *TimetableService) restrictionFor(ctx context.Context, seen map[string]entity.Restriction, viewerID uuid.UUID, category string) (entity.Restriction, *errors.AppError) {
	if viewerID == uuid.Nil || category == "" {
		return entity.RestrictionNone, nil
	}
	if restriction, ok := seen[category]; ok {
		return restriction, nil
	}
	restriction, appErr := s.members.GetRestriction(ctx, viewerID, category)
	if appErr != nil {
		return entity.RestrictionNone, appErr
	}
	seen[category] = restriction
	return restriction, nil
}
