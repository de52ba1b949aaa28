package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"studio-api/core/entity"
)

type Notification struct {
	ParticipantID uuid.UUID `db:"participant_id" json:"participant_id"`
	Title         string    `db:"title" json:"title"`
	Message       string    `db:"message" json:"message"`
	Kind          string    `db:"kind" json:"kind"`
	Data          JSONB     `db:"data" json:"data"`
	IsRead        bool      `db:"is_read" json:"is_read"`
	entity.BaseEntity
}

type JSONB map[string]interface{}

func (a JSONB) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *JSONB) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &a)
}

type PaginatedNotificationEntity = entity.Pagination[Notification]
