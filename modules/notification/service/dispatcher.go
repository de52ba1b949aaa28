package service

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"studio-api/core/logger"
	"studio-api/modules/notification/dto"
)

// TaskDeliverNotification is the asynq task type for intent delivery.
const TaskDeliverNotification = "notification:deliver"

// Dispatcher is the engine's outbound notification boundary. Dispatch is
// fire-and-forget: the engine's state transition has already committed by
// the time intents are dispatched, and enqueue failures are only logged.
type Dispatcher interface {
	Dispatch(ctx context.Context, intents ...dto.Intent)
}

// AsynqDispatcher enqueues one delivery task per intent onto redis.
type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher(client *asynq.Client) *AsynqDispatcher {
	return &AsynqDispatcher{client: client}
}

func (d *AsynqDispatcher) Dispatch(ctx context.Context, intents ...dto.Intent) {
	for i := range intents {
		payload, err := json.Marshal(intents[i])
		if err != nil {
			logger.Error("AsynqDispatcher:Dispatch:Marshal", "error", err, "kind", intents[i].Kind)
			continue
		}

		task := asynq.NewTask(TaskDeliverNotification, payload, asynq.MaxRetry(5))
		if _, err := d.client.EnqueueContext(ctx, task); err != nil {
			logger.Error("AsynqDispatcher:Dispatch:Enqueue",
				"error", err,
				"kind", intents[i].Kind,
				"participant_id", intents[i].ParticipantID)
			continue
		}

		logger.Info("AsynqDispatcher:Dispatch:Enqueued",
			"kind", intents[i].Kind,
			"participant_id", intents[i].ParticipantID)
	}
}

// HandleDeliverTask is the worker-side handler for TaskDeliverNotification.
func (s *NotificationService) HandleDeliverTask(ctx context.Context, task *asynq.Task) error {
	var intent dto.Intent
	if err := json.Unmarshal(task.Payload(), &intent); err != nil {
		logger.Error("NotificationService:HandleDeliverTask:Unmarshal", err)
		// Malformed payload never becomes deliverable; don't retry.
		return nil
	}

	if err := s.Deliver(ctx, &intent); err != nil {
		logger.Error("NotificationService:HandleDeliverTask:Deliver",
			"error", err,
			"kind", intent.Kind,
			"participant_id", intent.ParticipantID)
		return err
	}
	return nil
}
