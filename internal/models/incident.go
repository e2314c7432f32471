package models

import (
	"time"

	"gorm.io/gorm"
)

// Incident is one continuous downtime episode. At most one OPEN incident may
// exist per monitor at any time.
type Incident struct {
	gorm.Model

	MonitorID     uint       `gorm:"not null;index"`
	Status        string     `gorm:"not null;index"` // OPEN or RESOLVED
	TriggerReason string     `gorm:"not null"`
	StartedAt     time.Time  `gorm:"not null;index"`
	EndedAt       *time.Time // null while open

	// Relationships
	Monitor Monitor `gorm:"foreignKey:MonitorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
