package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"studio-api/core/database"
	"studio-api/core/logger"
	"studio-api/core/params"
	"studio-api/modules/notification/entity"
)

type NotificationRepository struct {
	db database.Database
}

func NewNotificationRepository(db database.Database) *NotificationRepository {
	return &NotificationRepository{db: db}
}

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByParticipantID(ctx context.Context, participantID uuid.UUID, params params.QueryParams) (*entity.PaginatedNotificationEntity, error)
	MarkAsRead(ctx context.Context, participantID uuid.UUID, ids []string) error
	MarkAllAsRead(ctx context.Context, participantID uuid.UUID) error
	CountUnread(ctx context.Context, participantID uuid.UUID) (int, error)
}

func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, participant_id, title, message, kind, data, is_read, created_at, updated_at)
		VALUES (:id, :participant_id, :title, :message, :kind, :data, :is_read, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, notification)
	if err != nil {
		logger.Error("NotificationRepository:Create", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) GetByParticipantID(ctx context.Context, participantID uuid.UUID, params params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	offset := (params.PageNumber - 1) * params.PageSize

	baseQuery := `FROM notifications WHERE participant_id = $1`

	var totalItems int
	err := r.db.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, participantID)
	if err != nil {
		logger.Error("NotificationRepository:GetByParticipantID:Count", err)
		return nil, err
	}

	query := `
		SELECT * ` + baseQuery + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var notifications []entity.Notification
	err = r.db.SelectContext(ctx, &notifications, query, participantID, params.PageSize, offset)
	if err != nil {
		logger.Error("NotificationRepository:GetByParticipantID:Select", err)
		return nil, err
	}

	return &entity.PaginatedNotificationEntity{
		Items:      notifications,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, participantID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE notifications SET is_read = true WHERE participant_id = ? AND id IN (?)`, participantID, ids)
	if err != nil {
		return err
	}

	query = r.db.SQLx().Rebind(query)
	err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error("NotificationRepository:MarkAsRead", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, participantID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true WHERE participant_id = $1`
	err := r.db.ExecContext(ctx, query, participantID)
	if err != nil {
		logger.Error("NotificationRepository:MarkAllAsRead", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, participantID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE participant_id = $1 AND is_read = false`
	err := r.db.GetContext(ctx, &count, query, participantID)
	if err != nil {
		logger.Error("NotificationRepository:CountUnread", err)
		return 0, err
	}
	return count, nil
}
