package health

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sarthak7846/uptime-monitor/internal/events"
	"github.com/sarthak7846/uptime-monitor/internal/models"
	"github.com/sarthak7846/uptime-monitor/internal/prober"
	"github.com/sarthak7846/uptime-monitor/internal/types"
)

// MonitorStore is the slice of the repository the engine reads and writes.
type MonitorStore interface {
	GetMonitor(ctx context.Context, id uint) (*models.Monitor, error)
	RecordProbe(ctx context.Context, monitorID uint, status string, failures, successes int, log *models.MonitorLog) error
}

type IncidentStore interface {
	OpenIncident(ctx context.Context, monitorID uint, reason string, at time.Time) (*models.Incident, bool, error)
	ResolveOpenIncident(ctx context.Context, monitorID uint, at time.Time) (*models.Incident, error)
}

type OutboxStore interface {
	AppendEvent(ctx context.Context, event *events.NotificationEvent) error
}

// Broadcaster receives live status transitions, e.g. for websocket fan-out.
type Broadcaster interface {
	MonitorStatusChanged(userID, monitorID uint, status string)
}

// Engine consumes probe results and drives the monitor state machine, the
// incident lifecycle and the notification outbox.
type Engine struct {
	monitors  MonitorStore
	incidents IncidentStore
	outbox    OutboxStore
	prober    prober.Prober
	broadcast Broadcaster // optional
	logger    zerolog.Logger
	now       func() time.Time
}

func NewEngine(monitors MonitorStore, incidents IncidentStore, outbox OutboxStore, p prober.Prober, broadcast Broadcaster, logger zerolog.Logger) *Engine {
	return &Engine{
		monitors:  monitors,
		incidents: incidents,
		outbox:    outbox,
		prober:    p,
		broadcast: broadcast,
		logger:    logger.With().Str("component", "health").Logger(),
		now:       time.Now,
	}
}

// ProcessTick runs one probe tick for the monitor: probe, apply the state
// machine, persist status/counters plus one log row, then run incident side
// effects. Safe to run more than once for the same logical tick.
func (e *Engine) ProcessTick(ctx context.Context, monitorID uint) error {
	monitor, err := e.monitors.GetMonitor(ctx, monitorID)
	if err != nil {
		return fmt.Errorf("load monitor %d: %w", monitorID, err)
	}

	result := e.prober.Probe(ctx, prober.Target{
		URL:     monitor.URL,
		Method:  monitor.Method,
		Timeout: time.Duration(monitor.Timeout) * time.Millisecond,
	})

	next := Evaluate(monitor.LastStatus, monitor.ConsecutiveFailures, monitor.ConsecutiveSuccesses, result.Healthy)

	observed := types.MonitorStatusUp
	if !result.Healthy {
		observed = types.MonitorStatusDown
	}
	logRow := &models.MonitorLog{
		MonitorID:    monitor.ID,
		Status:       observed,
		ResponseTime: result.ResponseTime,
		StatusCode:   result.StatusCode,
		Reason:       result.Reason,
		CheckedAt:    e.now(),
	}

	if err := e.monitors.RecordProbe(ctx, monitor.ID, next.Status, next.Failures, next.Successes, logRow); err != nil {
		return fmt.Errorf("record probe for monitor %d: %w", monitor.ID, err)
	}

	if next.StartIncident {
		if err := e.startIncident(ctx, monitor, result); err != nil {
			return err
		}
	}
	if next.ResolveIncident {
		if err := e.resolveIncident(ctx, monitor, result); err != nil {
			return err
		}
	}

	if next.Status != monitor.LastStatus && e.broadcast != nil {
		e.broadcast.MonitorStatusChanged(monitor.UserID, monitor.ID, next.Status)
	}

	e.logger.Debug().
		Uint("monitor_id", monitor.ID).
		Str("url", monitor.URL).
		Str("status", next.Status).
		Bool("healthy", result.Healthy).
		Msg("tick processed")
	return nil
}

func (e *Engine) startIncident(ctx context.Context, monitor *models.Monitor, result prober.Result) error {
	reason := result.Reason
	if reason == "" {
		reason = "HEALTH_CHECK_FAILED"
	}

	incident, created, err := e.incidents.OpenIncident(ctx, monitor.ID, reason, e.now())
	if err != nil {
		return fmt.Errorf("open incident for monitor %d: %w", monitor.ID, err)
	}
	if !created {
		// duplicate tick hit an already open incident
		return nil
	}

	event := events.NotificationEvent{
		ID:         uuid.NewString(),
		Type:       events.TypeMonitorDown,
		UserID:     monitor.UserID,
		MonitorID:  monitor.ID,
		IncidentID: incident.ID,
		OccurredAt: e.now(),
		Data: events.Data{
			MonitorName:    monitor.DisplayName(),
			URL:            monitor.URL,
			CurrentStatus:  types.MonitorStatusDown,
			PreviousStatus: monitor.LastStatus,
			ResponseTime:   result.ResponseTime,
			ErrorMessage:   result.Reason,
		},
	}
	if err := e.outbox.AppendEvent(ctx, &event); err != nil {
		return fmt.Errorf("enqueue %s for monitor %d: %w", events.TypeMonitorDown, monitor.ID, err)
	}

	e.logger.Info().
		Uint("monitor_id", monitor.ID).
		Uint("incident_id", incident.ID).
		Str("reason", reason).
		Msg("incident started")
	return nil
}

func (e *Engine) resolveIncident(ctx context.Context, monitor *models.Monitor, result prober.Result) error {
	incident, err := e.incidents.ResolveOpenIncident(ctx, monitor.ID, e.now())
	if err != nil {
		return fmt.Errorf("resolve incident for monitor %d: %w", monitor.ID, err)
	}
	if incident == nil {
		// nothing open, duplicate tick
		return nil
	}

	event := events.NotificationEvent{
		ID:         uuid.NewString(),
		Type:       events.TypeMonitorUp,
		UserID:     monitor.UserID,
		MonitorID:  monitor.ID,
		IncidentID: incident.ID,
		OccurredAt: e.now(),
		Data: events.Data{
			MonitorName:    monitor.DisplayName(),
			URL:            monitor.URL,
			CurrentStatus:  types.MonitorStatusUp,
			PreviousStatus: types.MonitorStatusDown,
			ResponseTime:   result.ResponseTime,
		},
	}
	if err := e.outbox.AppendEvent(ctx, &event); err != nil {
		return fmt.Errorf("enqueue %s for monitor %d: %w", events.TypeMonitorUp, monitor.ID, err)
	}

	e.logger.Info().
		Uint("monitor_id", monitor.ID).
		Uint("incident_id", incident.ID).
		Msg("incident resolved")
	return nil
}
