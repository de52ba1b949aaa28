package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	coreEntity "studio-api/core/entity"
	"studio-api/core/params"
	"studio-api/core/utils"
	"studio-api/modules/notification/dto"
	"studio-api/modules/notification/entity"
	"studio-api/modules/notification/repository"
)

type NotificationService struct {
	repo repository.NotificationRepositoryInterface
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) *NotificationService {
	return &NotificationService{repo: repo}
}

// Deliver persists one notification for an intent. Called by the asynq
// worker, not by the engine directly.
func (s *NotificationService) Deliver(ctx context.Context, intent *dto.Intent) error {
	title, message := renderIntent(intent)

	notif := &entity.Notification{
		ParticipantID: intent.ParticipantID,
		Title:         title,
		Message:       message,
		Kind:          intent.Kind,
		Data:          entity.JSONB(intent.Payload),
		IsRead:        false,
		BaseEntity: coreEntity.BaseEntity{
			ID:        utils.GenerateID(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	return s.repo.Create(ctx, notif)
}

// renderIntent turns an engine intent into user-facing copy. Payload keys
// come from the emitting command (class_name, class_date, changes).
func renderIntent(intent *dto.Intent) (title, message string) {
	className, _ := intent.Payload["class_name"].(string)
	classDate, _ := intent.Payload["class_date"].(string)

	switch intent.Kind {
	case dto.IntentKindWaitlistPromoted:
		return "You're in!", fmt.Sprintf("A spot opened up in %s on %s and you have been moved off the waitlist.", className, classDate)
	case dto.IntentKindClassCancelled:
		return "Class cancelled", fmt.Sprintf("%s on %s has been cancelled.", className, classDate)
	case dto.IntentKindInstanceModified:
		return "Class updated", fmt.Sprintf("Details for %s on %s have changed. Check the schedule.", className, classDate)
	default:
		return "Notification", fmt.Sprintf("Update for %s on %s.", className, classDate)
	}
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, participantID uuid.UUID, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	return s.repo.GetByParticipantID(ctx, participantID, queryParams)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, participantID uuid.UUID, ids []string) error {
	return s.repo.MarkAsRead(ctx, participantID, ids)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, participantID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, participantID)
}

func (s *NotificationService) CountUnread(ctx context.Context, participantID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, participantID)
}
