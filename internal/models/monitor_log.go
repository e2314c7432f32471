package models

import "time"

// MonitorLog is one append-only probe outcome. Rows are never mutated or
// deleted here; retention is an operational concern.
type MonitorLog struct {
	BaseModel

	MonitorID    uint      `gorm:"not null;index:idx_monitor_checked" json:"monitor_id"`
	Status       string    `gorm:"not null" json:"status"` // observed UP or DOWN for this probe
	ResponseTime *int      `json:"response_time"`          // milliseconds, null when no response arrived
	StatusCode   *int      `json:"status_code"`
	Reason       string    `json:"reason,omitempty"`
	CheckedAt    time.Time `gorm:"not null;index:idx_monitor_checked" json:"checked_at"`

	// Relationships
	Monitor Monitor `gorm:"foreignKey:MonitorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
