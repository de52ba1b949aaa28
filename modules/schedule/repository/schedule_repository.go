package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"studio-api/core/database"
	"studio-api/core/logger"
	"studio-api/modules/schedule/entity"
)

// ScheduleRepository handles recurring_schedules and schedule_exceptions
// database operations.
type ScheduleRepository struct {
	DB database.Database
}

func NewScheduleRepository(db database.Database) *ScheduleRepository {
	return &ScheduleRepository{DB: db}
}

type ScheduleRepositoryInterface interface {
	// Recurring schedules
	Create(ctx context.Context, schedule *entity.RecurringSchedule) error
	GetByID(ctx context.Context, id string) (*entity.RecurringSchedule, error)
	ListByLocation(ctx context.Context, locationID uuid.UUID) ([]entity.RecurringSchedule, error)
	ListActiveInWindow(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]entity.RecurringSchedule, error)
	Update(ctx context.Context, schedule *entity.RecurringSchedule) error
	Delete(ctx context.Context, id string) error

	// Exceptions, keyed (schedule_id, date)
	GetException(ctx context.Context, scheduleID string, date time.Time) (*entity.ScheduleException, error)
	ListExceptionsForSchedules(ctx context.Context, scheduleIDs []string, from, to time.Time) ([]entity.ScheduleException, error)
	UpsertException(ctx context.Context, exception *entity.ScheduleException) error
	UpsertExceptionTx(tx *sqlx.Tx, exception *entity.ScheduleException) error
}

const scheduleColumns = `
	id, location_id, class_definition_id, coach_id, weekdays, start_time,
	duration_minutes, max_participants, start_date, end_date, has_waitlist,
	special_label, created_at, updated_at`

func (r *ScheduleRepository) Create(ctx context.Context, schedule *entity.RecurringSchedule) error {
	query := `
		INSERT INTO recurring_schedules (id, location_id, class_definition_id, coach_id, weekdays,
			start_time, duration_minutes, max_participants, start_date, end_date,
			has_waitlist, special_label, created_at, updated_at)
		VALUES (:id, :location_id, :class_definition_id, :coach_id, :weekdays,
			:start_time, :duration_minutes, :max_participants, :start_date, :end_date,
			:has_waitlist, :special_label, :created_at, :updated_at)
	`
	_, err := r.DB.NamedExecContext(ctx, query, schedule)
	if err != nil {
		logger.Error("ScheduleRepository:Create", err)
		return err
	}
	return nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*entity.RecurringSchedule, error) {
	query := `SELECT` + scheduleColumns + ` FROM recurring_schedules WHERE id = $1`

	var schedule entity.RecurringSchedule
	err := r.DB.GetContext(ctx, &schedule, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ScheduleRepository:GetByID", err)
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) ListByLocation(ctx context.Context, locationID uuid.UUID) ([]entity.RecurringSchedule, error) {
	query := `
		SELECT` + scheduleColumns + `
		FROM recurring_schedules
		WHERE location_id = $1
		ORDER BY start_time ASC, id ASC
	`

	var schedules []entity.RecurringSchedule
	err := r.DB.SelectContext(ctx, &schedules, query, locationID)
	if err != nil {
		logger.Error("ScheduleRepository:ListByLocation", err)
		return nil, err
	}
	return schedules, nil
}

// ListActiveInWindow returns schedules whose validity window intersects
// [from, to]. The materializer narrows further per day.
func (r *ScheduleRepository) ListActiveInWindow(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]entity.RecurringSchedule, error) {
	query := `
		SELECT` + scheduleColumns + `
		FROM recurring_schedules
		WHERE location_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_time ASC, id ASC
	`

	var schedules []entity.RecurringSchedule
	err := r.DB.SelectContext(ctx, &schedules, query, locationID, from, to)
	if err != nil {
		logger.Error("ScheduleRepository:ListActiveInWindow", err)
		return nil, err
	}
	return schedules, nil
}

func (r *ScheduleRepository) Update(ctx context.Context, schedule *entity.RecurringSchedule) error {
	query := `
		UPDATE recurring_schedules
		SET location_id = $2, class_definition_id = $3, coach_id = $4, weekdays = $5,
		    start_time = $6, duration_minutes = $7, max_participants = $8,
		    start_date = $9, end_date = $10, has_waitlist = $11, special_label = $12,
		    updated_at = NOW()
		WHERE id = $1
	`
	err := r.DB.ExecContext(ctx, query,
		schedule.ID, schedule.LocationID, schedule.ClassDefinitionID, schedule.CoachID,
		schedule.Weekdays, schedule.StartTime, schedule.DurationMinutes,
		schedule.MaxParticipants, schedule.StartDate, schedule.EndDate,
		schedule.HasWaitlist, schedule.SpecialLabel)
	if err != nil {
		logger.Error("ScheduleRepository:Update", err)
	}
	return err
}

func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	err := r.DB.ExecContext(ctx, `DELETE FROM recurring_schedules WHERE id = $1`, id)
	if err != nil {
		logger.Error("ScheduleRepository:Delete", err)
	}
	return err
}

// ===================== Exceptions =====================

const exceptionColumns = `
	id, schedule_id, date, status, new_start_time, new_duration_minutes,
	new_coach_id, new_max_participants, created_at, updated_at`

func (r *ScheduleRepository) GetException(ctx context.Context, scheduleID string, date time.Time) (*entity.ScheduleException, error) {
	query := `SELECT` + exceptionColumns + ` FROM schedule_exceptions WHERE schedule_id = $1 AND date = $2`

	var exception entity.ScheduleException
	err := r.DB.GetContext(ctx, &exception, query, scheduleID, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ScheduleRepository:GetException", err)
		return nil, err
	}
	return &exception, nil
}

func (r *ScheduleRepository) ListExceptionsForSchedules(ctx context.Context, scheduleIDs []string, from, to time.Time) ([]entity.ScheduleException, error) {
	if len(scheduleIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT`+exceptionColumns+`
		FROM schedule_exceptions
		WHERE schedule_id IN (?) AND date >= ? AND date <= ?
	`, scheduleIDs, from, to)
	if err != nil {
		return nil, err
	}
	query = r.DB.SQLx().Rebind(query)

	var exceptions []entity.ScheduleException
	err = r.DB.SelectContext(ctx, &exceptions, query, args...)
	if err != nil {
		logger.Error("ScheduleRepository:ListExceptionsForSchedules", err)
		return nil, err
	}
	return exceptions, nil
}

const upsertExceptionQuery = `
	INSERT INTO schedule_exceptions (id, schedule_id, date, status, new_start_time,
		new_duration_minutes, new_coach_id, new_max_participants, created_at, updated_at)
	VALUES (:id, :schedule_id, :date, :status, :new_start_time,
		:new_duration_minutes, :new_coach_id, :new_max_participants, :created_at, :updated_at)
	ON CONFLICT (schedule_id, date) DO UPDATE
	SET status = EXCLUDED.status,
	    new_start_time = EXCLUDED.new_start_time,
	    new_duration_minutes = EXCLUDED.new_duration_minutes,
	    new_coach_id = EXCLUDED.new_coach_id,
	    new_max_participants = EXCLUDED.new_max_participants,
	    updated_at = EXCLUDED.updated_at
`

func (r *ScheduleRepository) UpsertException(ctx context.Context, exception *entity.ScheduleException) error {
	_, err := r.DB.NamedExecContext(ctx, upsertExceptionQuery, exception)
	if err != nil {
		logger.Error("ScheduleRepository:UpsertException", err)
	}
	return err
}

// UpsertExceptionTx is the transactional variant used by cascading
// instance cancellation.
func (r *ScheduleRepository) UpsertExceptionTx(tx *sqlx.Tx, exception *entity.ScheduleException) error {
	_, err := tx.NamedExec(upsertExceptionQuery, exception)
	if err != nil {
		logger.Error("ScheduleRepository:UpsertExceptionTx", err)
	}
	return err
}
