package uptime

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sarthak7846/uptime-monitor/internal/models"
)

// ErrInvalidWindow is returned when a requested window has from >= to.
var ErrInvalidWindow = errors.New("uptime: window start must be before window end")

type MonitorStore interface {
	GetMonitor(ctx context.Context, id uint) (*models.Monitor, error)
}

type IncidentStore interface {
	OverlappingIncidents(ctx context.Context, monitorID uint, from, to time.Time) ([]models.Incident, error)
}

// Report is the uptime summary for a single monitor over one window.
type Report struct {
	MonitorID     uint      `json:"monitor_id"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	WindowMs      int64     `json:"window_ms"`
	DowntimeMs    int64     `json:"downtime_ms"`
	UptimePercent float64   `json:"uptime_percent"`
	Incidents     int       `json:"incidents"`
}

// Summary bundles the standard dashboard windows.
type Summary struct {
	MonitorID uint   `json:"monitor_id"`
	Last24h   Report `json:"last_24h"`
	Last7d    Report `json:"last_7d"`
	Last30d   Report `json:"last_30d"`
}

// Aggregator computes uptime percentages from the incident history rather
// than from individual probe logs, so a monitor with sparse checks still
// reports downtime for the full span of each incident.
type Aggregator struct {
	monitors  MonitorStore
	incidents IncidentStore
	now       func() time.Time
}

func NewAggregator(monitors MonitorStore, incidents IncidentStore) *Aggregator {
	return &Aggregator{
		monitors:  monitors,
		incidents: incidents,
		now:       time.Now,
	}
}

// Window computes the uptime report for [from, to]. The window is clamped
// to [monitor creation, now]; a window that collapses entirely outside the
// monitor's lifetime reports 100% over zero milliseconds.
func (a *Aggregator) Window(ctx context.Context, monitorID uint, from, to time.Time) (*Report, error) {
	if !from.Before(to) {
		return nil, ErrInvalidWindow
	}

	monitor, err := a.monitors.GetMonitor(ctx, monitorID)
	if err != nil {
		return nil, fmt.Errorf("load monitor %d: %w", monitorID, err)
	}

	now := a.now()
	if from.Before(monitor.CreatedAt) {
		from = monitor.CreatedAt
	}
	if to.After(now) {
		to = now
	}

	window := to.Sub(from)
	if window <= 0 {
		// The requested range lies entirely before the monitor existed or
		// entirely in the future.
		return &Report{
			MonitorID:     monitorID,
			From:          from,
			To:            from,
			UptimePercent: 100,
		}, nil
	}

	incidents, err := a.incidents.OverlappingIncidents(ctx, monitorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load incidents for monitor %d: %w", monitorID, err)
	}

	var downtime time.Duration
	for _, incident := range incidents {
		downtime += overlap(incident, from, to, now)
	}
	if downtime > window {
		downtime = window
	}

	percent := 100 * float64(window-downtime) / float64(window)

	return &Report{
		MonitorID:     monitorID,
		From:          from,
		To:            to,
		WindowMs:      window.Milliseconds(),
		DowntimeMs:    downtime.Milliseconds(),
		UptimePercent: round2(percent),
		Incidents:     len(incidents),
	}, nil
}

// Summarize produces the 24h/7d/30d dashboard rollup ending now.
func (a *Aggregator) Summarize(ctx context.Context, monitorID uint) (*Summary, error) {
	now := a.now()

	last24h, err := a.Window(ctx, monitorID, now.Add(-24*time.Hour), now)
	if err != nil {
		return nil, err
	}
	last7d, err := a.Window(ctx, monitorID, now.Add(-7*24*time.Hour), now)
	if err != nil {
		return nil, err
	}
	last30d, err := a.Window(ctx, monitorID, now.Add(-30*24*time.Hour), now)
	if err != nil {
		return nil, err
	}

	return &Summary{
		MonitorID: monitorID,
		Last24h:   *last24h,
		Last7d:    *last7d,
		Last30d:   *last30d,
	}, nil
}

// overlap returns the portion of the incident's downtime that falls inside
// [from, to]. Open incidents count as down through now.
func overlap(incident models.Incident, from, to, now time.Time) time.Duration {
	start := incident.StartedAt
	if start.Before(from) {
		start = from
	}

	end := now
	if incident.EndedAt != nil {
		end = *incident.EndedAt
	}
	if end.After(to) {
		end = to
	}

	if span := end.Sub(start); span > 0 {
		return span
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
