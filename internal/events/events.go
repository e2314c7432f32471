package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type discriminates notification events.
type Type string

const (
	TypeMonitorDown Type = "monitor.down"
	TypeMonitorUp   Type = "monitor.up"
)

func (t Type) Valid() bool {
	return t == TypeMonitorDown || t == TypeMonitorUp
}

// Data is the human-facing context attached to a notification event.
type Data struct {
	MonitorName    string `json:"monitorName"`
	URL            string `json:"url"`
	CurrentStatus  string `json:"currentStatus"`
	PreviousStatus string `json:"previousStatus"`
	ResponseTime   *int   `json:"responseTime,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
}

// NotificationEvent is the domain event written to the outbox when a monitor
// transitions. It is serialized to JSON only at the storage boundary and
// decoded back on the dispatch side.
type NotificationEvent struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	UserID     uint      `json:"userId"`
	MonitorID  uint      `json:"monitorId"`
	IncidentID uint      `json:"incidentId"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       Data      `json:"data"`
}

func (e *NotificationEvent) Marshal() ([]byte, error) {
	if !e.Type.Valid() {
		return nil, fmt.Errorf("events: unknown event type %q", e.Type)
	}
	return json.Marshal(e)
}

func Unmarshal(raw []byte) (*NotificationEvent, error) {
	var event NotificationEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("events: decode payload: %w", err)
	}
	if !event.Type.Valid() {
		return nil, fmt.Errorf("events: unknown event type %q", event.Type)
	}
	return &event, nil
}
