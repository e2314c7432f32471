package models

import (
	"encoding/json"

	"github.com/sarthak7846/uptime-monitor/internal/events"
	"gorm.io/datatypes"
)

type NotificationEndpoint struct {
	BaseModel

	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Channel string `gorm:"not null" json:"channel"` // e.g. "EMAIL", "WEBHOOK"
	Address string `gorm:"not null" json:"address"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

type NotificationRule struct {
	BaseModel

	UserID     uint           `gorm:"not null;index" json:"user_id"`
	MonitorID  *uint          `gorm:"index" json:"monitor_id"` // null scopes the rule to all of the user's monitors
	Events     datatypes.JSON `gorm:"not null" json:"events"`  // JSON array of subscribed event types
	Enabled    bool           `gorm:"default:true" json:"enabled"`
	EndpointID uint           `gorm:"not null" json:"endpoint_id"`

	// Relationships
	User     User                 `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Monitor  *Monitor             `gorm:"foreignKey:MonitorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Endpoint NotificationEndpoint `gorm:"foreignKey:EndpointID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"endpoint"`
}

// SubscribesTo reports whether the rule's subscribed-event set contains the
// given event type.
func (r *NotificationRule) SubscribesTo(t events.Type) bool {
	var subscribed []string
	if err := json.Unmarshal(r.Events, &subscribed); err != nil {
		return false
	}
	for _, s := range subscribed {
		if events.Type(s) == t {
			return true
		}
	}
	return false
}
