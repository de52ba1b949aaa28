package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"studio-api/core/database"
	"studio-api/core/logger"
	"studio-api/modules/booking/entity"
)

// BookingRepository handles bookings database operations. Waitlist order is
// never stored; every active-bookings read sorts by booking_date so position
// is always computed.
type BookingRepository struct {
	DB database.Database
}

func NewBookingRepository(db database.Database) *BookingRepository {
	return &BookingRepository{DB: db}
}

type BookingRepositoryInterface interface {
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id string) (*entity.Booking, error)
	GetActiveByParticipantAndInstance(ctx context.Context, participantID uuid.UUID, scheduleID string, classDate time.Time) (*entity.Booking, error)
	ListActiveByInstance(ctx context.Context, scheduleID string, classDate time.Time) ([]entity.Booking, error)
	ListActiveForSchedulesWindow(ctx context.Context, scheduleIDs []string, from, to time.Time) ([]entity.Booking, error)
	ListByParticipant(ctx context.Context, participantID uuid.UUID, from time.Time) ([]entity.Booking, error)
	UpdateStatus(ctx context.Context, id string, status entity.BookingStatus, cancelReason *string) error
	UpdateStatusTx(tx *sqlx.Tx, id string, status entity.BookingStatus, cancelReason *string) error
	CancelAllActiveForInstanceTx(tx *sqlx.Tx, scheduleID string, classDate time.Time, reason string) ([]entity.Booking, error)
}

const bookingColumns = `
	id, participant_id, schedule_id, class_date, status, booking_date,
	cancel_reason, created_at, updated_at`

func (r *BookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, participant_id, schedule_id, class_date, status,
			booking_date, cancel_reason, created_at, updated_at)
		VALUES (:id, :participant_id, :schedule_id, :class_date, :status,
			:booking_date, :cancel_reason, :created_at, :updated_at)
	`
	_, err := r.DB.NamedExecContext(ctx, query, booking)
	if err != nil {
		logger.Error("BookingRepository:Create", err)
		return err
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking entity.Booking
	err := r.DB.GetContext(ctx, &booking, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetByID", err)
		return nil, err
	}
	return &booking, nil
}

// GetActiveByParticipantAndInstance enforces the one-active-booking rule.
func (r *BookingRepository) GetActiveByParticipantAndInstance(ctx context.Context, participantID uuid.UUID, scheduleID string, classDate time.Time) (*entity.Booking, error) {
	query := `
		SELECT` + bookingColumns + `
		FROM bookings
		WHERE participant_id = $1 AND schedule_id = $2 AND class_date = $3 AND status != 'CANCELLED'
		LIMIT 1
	`

	var booking entity.Booking
	err := r.DB.GetContext(ctx, &booking, query, participantID, scheduleID, classDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetActiveByParticipantAndInstance", err)
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) ListActiveByInstance(ctx context.Context, scheduleID string, classDate time.Time) ([]entity.Booking, error) {
	query := `
		SELECT` + bookingColumns + `
		FROM bookings
		WHERE schedule_id = $1 AND class_date = $2 AND status != 'CANCELLED'
		ORDER BY booking_date ASC, id ASC
	`

	var bookings []entity.Booking
	err := r.DB.SelectContext(ctx, &bookings, query, scheduleID, classDate)
	if err != nil {
		logger.Error("BookingRepository:ListActiveByInstance", err)
		return nil, err
	}
	return bookings, nil
}

// ListActiveForSchedulesWindow feeds the timetable's attendance counts in
// one round trip for a whole date window.
func (r *BookingRepository) ListActiveForSchedulesWindow(ctx context.Context, scheduleIDs []string, from, to time.Time) ([]entity.Booking, error) {
	if len(scheduleIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT`+bookingColumns+`
		FROM bookings
		WHERE schedule_id IN (?) AND class_date >= ? AND class_date <= ? AND status != 'CANCELLED'
		ORDER BY booking_date ASC, id ASC
	`, scheduleIDs, from, to)
	if err != nil {
		return nil, err
	}
	query = r.DB.SQLx().Rebind(query)

	var bookings []entity.Booking
	err = r.DB.SelectContext(ctx, &bookings, query, args...)
	if err != nil {
		logger.Error("BookingRepository:ListActiveForSchedulesWindow", err)
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) ListByParticipant(ctx context.Context, participantID uuid.UUID, from time.Time) ([]entity.Booking, error) {
	query := `
		SELECT` + bookingColumns + `
		FROM bookings
		WHERE participant_id = $1 AND class_date >= $2
		ORDER BY class_date ASC, booking_date ASC
	`

	var bookings []entity.Booking
	err := r.DB.SelectContext(ctx, &bookings, query, participantID, from)
	if err != nil {
		logger.Error("BookingRepository:ListByParticipant", err)
		return nil, err
	}
	return bookings, nil
}

const updateStatusQuery = `
	UPDATE bookings
	SET status = $2, cancel_reason = $3, updated_at = NOW()
	WHERE id = $1
`

func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status entity.BookingStatus, cancelReason *string) error {
	err := r.DB.ExecContext(ctx, updateStatusQuery, id, status, cancelReason)
	if err != nil {
		logger.Error("BookingRepository:UpdateStatus", err)
	}
	return err
}

func (r *BookingRepository) UpdateStatusTx(tx *sqlx.Tx, id string, status entity.BookingStatus, cancelReason *string) error {
	_, err := tx.Exec(updateStatusQuery, id, status, cancelReason)
	if err != nil {
		logger.Error("BookingRepository:UpdateStatusTx", err)
	}
	return err
}

// CancelAllActiveForInstanceTx cascades an instance cancellation. Returns
// the bookings that were still active so the caller can emit one
// notification intent per affected participant.
func (r *BookingRepository) CancelAllActiveForInstanceTx(tx *sqlx.Tx, scheduleID string, classDate time.Time, reason string) ([]entity.Booking, error) {
	query := `
		UPDATE bookings
		SET status = 'CANCELLED', cancel_reason = $3, updated_at = NOW()
		WHERE schedule_id = $1 AND class_date = $2 AND status != 'CANCELLED'
		RETURNING` + bookingColumns + `
	`

	var affected []entity.Booking
	err := tx.Select(&affected, query, scheduleID, classDate, reason)
	if err != nil {
		logger.Error("BookingRepository:CancelAllActiveForInstanceTx", err)
		return nil, err
	}
	return affected, nil
}
