package models

type Monitor struct {
	BaseModel

	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Name    string `json:"name"`
	URL     string `gorm:"not null" json:"url"`
	Method  string `gorm:"not null;default:GET" json:"method"` // GET, POST or HEAD
	Interval int   `gorm:"not null" json:"interval"`           // probe interval in milliseconds
	Timeout  int   `gorm:"not null" json:"timeout"`            // per-probe timeout in milliseconds

	LastStatus           string `gorm:"not null;default:PENDING" json:"last_status"`
	ConsecutiveFailures  int    `gorm:"not null;default:0" json:"consecutive_failures"`
	ConsecutiveSuccesses int    `gorm:"not null;default:0" json:"consecutive_successes"`

	// Relationships
	User      User         `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Logs      []MonitorLog `gorm:"foreignKey:MonitorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Incidents []Incident   `gorm:"foreignKey:MonitorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// DisplayName is the name used in notifications, falling back to the URL for
// unnamed monitors.
func (m *Monitor) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.URL
}
