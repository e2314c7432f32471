package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationEvent is one durable outbox row. Rows are appended by the
// health engine, flipped to PROCESSED by the outbox dispatcher and never
// deleted (audit trail).
type NotificationEvent struct {
	BaseModel

	EventID     string         `gorm:"uniqueIndex;not null" json:"event_id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Type        string         `gorm:"not null" json:"type"`
	Payload     datatypes.JSON `gorm:"not null" json:"payload"`
	Status      string         `gorm:"not null;index;default:PENDING" json:"status"`
	ProcessedAt *time.Time     `json:"processed_at"`
}
