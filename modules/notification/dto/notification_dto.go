package dto

import (
	"github.com/google/uuid"
)

// Intent kinds the booking engine emits. Delivery is decoupled: the engine
// enqueues intents and never waits on, or fails because of, transport.
const (
	IntentKindWaitlistPromoted = "waitlist_promoted"
	IntentKindClassCancelled   = "class_cancelled"
	IntentKindInstanceModified = "instance_modified"
)

// Intent is a "who must be told, what happened" record produced by the
// booking engine. The payload carries instance context (schedule, date,
// changed fields) for the eventual push message.
type Intent struct {
	ParticipantID uuid.UUID      `json:"participant_id"`
	Kind          string         `json:"kind"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// MarkAsReadRequest lists notification ids to mark read.
type MarkAsReadRequest struct {
	IDs []string `json:"ids" validate:"required"`
}
