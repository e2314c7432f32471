package types

import "time"

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type MonitorResponse struct {
	ID                   uint      `json:"id"`
	Name                 string    `json:"name"`
	URL                  string    `json:"url"`
	Method               string    `json:"method"`
	Interval             int       `json:"interval"`
	Timeout              int       `json:"timeout"`
	Status               string    `json:"status"`
	ConsecutiveFailures  int       `json:"consecutive_failures"`
	ConsecutiveSuccesses int       `json:"consecutive_successes"`
	CreatedAt            time.Time `json:"created_at"`
}

type MonitorLogResponse struct {
	ID           uint      `json:"id"`
	Status       string    `json:"status"`
	ResponseTime *int      `json:"response_time"`
	StatusCode   *int      `json:"status_code"`
	Reason       string    `json:"reason,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}

type IncidentResponse struct {
	ID            uint       `json:"id"`
	MonitorID     uint       `json:"monitor_id"`
	Status        string     `json:"status"`
	TriggerReason string     `json:"trigger_reason"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at"`
}

type EndpointResponse struct {
	ID      uint   `json:"id"`
	Channel string `json:"channel"`
	Address string `json:"address"`
}

type RuleResponse struct {
	ID        uint             `json:"id"`
	MonitorID *uint            `json:"monitor_id"`
	Events    []string         `json:"events"`
	Enabled   bool             `json:"enabled"`
	Endpoint  EndpointResponse `json:"endpoint"`
}
