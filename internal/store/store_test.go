package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sarthak7846/uptime-monitor/db"
	"github.com/sarthak7846/uptime-monitor/internal/events"
	"github.com/sarthak7846/uptime-monitor/internal/models"
	"github.com/sarthak7846/uptime-monitor/internal/types"
	"gorm.io/datatypes"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := db.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(gdb)
}

func seedUser(t *testing.T, s *Store) *models.User {
	t.Helper()
	user := &models.User{Name: "alice", Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedMonitor(t *testing.T, s *Store, userID uint) *models.Monitor {
	t.Helper()
	monitor := &models.Monitor{
		UserID:   userID,
		Name:     "api",
		URL:      "https://api.example.com",
		Method:   "GET",
		Interval: 60000,
		Timeout:  30000,
	}
	if err := s.CreateMonitor(context.Background(), monitor); err != nil {
		t.Fatalf("seed monitor: %v", err)
	}
	return monitor
}

func TestGetMonitorNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMonitor(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteMonitorMissingRowIsNotFound(t *testing.T) {
	s := newTestStore(t)

	if err := s.DeleteMonitor(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListMonitorsScopedToUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := seedUser(t, s)
	bob := seedUser(t, s)
	seedMonitor(t, s, alice.ID)
	seedMonitor(t, s, alice.ID)
	seedMonitor(t, s, bob.ID)

	monitors, err := s.ListMonitors(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListMonitors: %v", err)
	}
	if len(monitors) != 2 {
		t.Errorf("len = %d, want 2", len(monitors))
	}

	all, err := s.ListAllMonitors(ctx)
	if err != nil {
		t.Fatalf("ListAllMonitors: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}
}

func TestRecordProbeUpdatesMonitorAndAppendsLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s)
	monitor := seedMonitor(t, s, user.ID)

	rt := 120
	code := 503
	log := &models.MonitorLog{
		MonitorID:    monitor.ID,
		Status:       types.MonitorStatusDown,
		ResponseTime: &rt,
		StatusCode:   &code,
		Reason:       "HTTP_503",
		CheckedAt:    time.Now().UTC(),
	}
	if err := s.RecordProbe(ctx, monitor.ID, types.MonitorStatusPending, 1, 0, log); err != nil {
		t.Fatalf("RecordProbe: %v", err)
	}

	got, err := s.GetMonitor(ctx, monitor.ID)
	if err != nil {
		t.Fatalf("GetMonitor: %v", err)
	}
	if got.ConsecutiveFailures != 1 {
		t.Errorf("ConsecutiveFailures = %d, want 1", got.ConsecutiveFailures)
	}
	if got.LastStatus != types.MonitorStatusPending {
		t.Errorf("LastStatus = %s, want PENDING", got.LastStatus)
	}

	logs, err := s.ListLogs(ctx, monitor.ID, 10)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(logs))
	}
	if logs[0].Reason != "HTTP_503" {
		t.Errorf("Reason = %s, want HTTP_503", logs[0].Reason)
	}
}

func TestRecordProbeMissingMonitor(t *testing.T) {
	s := newTestStore(t)

	log := &models.MonitorLog{MonitorID: 999, Status: types.MonitorStatusDown, CheckedAt: time.Now()}
	err := s.RecordProbe(context.Background(), 999, types.MonitorStatusDown, 1, 0, log)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want wrapped ErrNotFound", err)
	}
}

func TestListLogsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s)
	monitor := seedMonitor(t, s, user.ID)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		log := &models.MonitorLog{
			MonitorID: monitor.ID,
			Status:    types.MonitorStatusUp,
			CheckedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.RecordProbe(ctx, monitor.ID, types.MonitorStatusUp, 0, 2, log); err != nil {
			t.Fatalf("RecordProbe: %v", err)
		}
	}

	logs, err := s.ListLogs(ctx, monitor.ID, 2)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("logs = %d, want 2 (limit)", len(logs))
	}
	if !logs[0].CheckedAt.After(logs[1].CheckedAt) {
		t.Errorf("logs not ordered newest first: %v then %v", logs[0].CheckedAt, logs[1].CheckedAt)
	}
}

func TestOpenIncidentIsIdempotentWhileOpen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s)
	monitor := seedMonitor(t, s, user.ID)

	first, created, err := s.OpenIncident(ctx, monitor.ID, "HTTP_503", time.Now().UTC())
	if err != nil {
		t.Fatalf("OpenIncident: %v", err)
	}
	if !created {
		t.Fatal("first OpenIncident should create")
	}

	second, created, err := s.OpenIncident(ctx, monitor.ID, "TIMEOUT", time.Now().UTC())
	if err != nil {
		t.Fatalf("second OpenIncident: %v", err)
	}
	if created {
		t.Error("second OpenIncident must not create while one is open")
	}
	if second.ID != first.ID {
		t.Errorf("returned incident %d, want existing %d", second.ID, first.ID)
	}
}

func TestResolveOpenIncident(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s)
	monitor := seedMonitor(t, s, user.ID)

	opened, _, err := s.OpenIncident(ctx, monitor.ID, "HTTP_503", time.Now().UTC())
	if err != nil {
		t.Fatalf("OpenIncident: %v", err)
	}

	endedAt := time.Now().UTC()
	resolved, err := s.ResolveOpenIncident(ctx, monitor.ID, endedAt)
	if err != nil {
		t.Fatalf("ResolveOpenIncident: %v", err)
	}
	if resolved == nil || resolved.ID != opened.ID {
		t.Fatalf("resolved = %+v, want incident %d", resolved, opened.ID)
	}
	if resolved.Status != types.IncidentStatusResolved {
		t.Errorf("Status = %s, want RESOLVED", resolved.Status)
	}
	if resolved.EndedAt == nil {
		t.Error("EndedAt should be set")
	}

	// A new failure after resolution opens a fresh incident.
	_, created, err := s.OpenIncident(ctx, monitor.ID, "HTTP_500", time.Now().UTC())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !created {
		t.Error("a resolved incident must not block a new one")
	}
}

func TestResolveWithNoOpenIncidentIsNoop(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s)
	monitor := seedMonitor(t, s, user.ID)

	resolved, err := s.ResolveOpenIncident(context.Background(), monitor.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("ResolveOpenIncident: %v", err)
	}
	if resolved != nil {
		t.Errorf("resolved = %+v, want nil", resolved)
	}
}

func TestOverlappingIncidentsIncludesOpenOnes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s)
	monitor := seedMonitor(t, s, user.ID)

	now := time.Now().UTC()

	// Closed incident well before the window.
	if _, _, err := s.OpenIncident(ctx, monitor.ID, "OLD", now.Add(-72*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ResolveOpenIncident(ctx, monitor.ID, now.Add(-71*time.Hour)); err != nil {
		t.Fatal(err)
	}
	// Open incident inside the window.
	if _, _, err := s.OpenIncident(ctx, monitor.ID, "CURRENT", now.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	incidents, err := s.OverlappingIncidents(ctx, monitor.ID, now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("OverlappingIncidents: %v", err)
	}
	if len(incidents) != 1 {
		t.Fatalf("incidents = %d, want 1", len(incidents))
	}
	if incidents[0].TriggerReason != "CURRENT" {
		t.Errorf("TriggerReason = %s, want CURRENT", incidents[0].TriggerReason)
	}
}

func appendTestEvent(t *testing.T, s *Store, userID, monitorID uint, eventType events.Type) string {
	t.Helper()
	event := &events.NotificationEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		MonitorID:  monitorID,
		IncidentID: 1,
		OccurredAt: time.Now().UTC(),
		Data: events.Data{
			MonitorName:   "api",
			URL:           "https://api.example.com",
			CurrentStatus: types.MonitorStatusDown,
		},
	}
	if err := s.AppendEvent(context.Background(), event); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}
	return event.ID
}

func TestPendingEventsOldestFirstAndMarkProcessed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s)
	monitor := seedMonitor(t, s, user.ID)

	firstID := appendTestEvent(t, s, user.ID, monitor.ID, events.TypeMonitorDown)
	appendTestEvent(t, s, user.ID, monitor.ID, events.TypeMonitorUp)

	pending, err := s.PendingEvents(ctx, 10)
	if err != nil {
		t.Fatalf("PendingEvents: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].EventID != firstID {
		t.Errorf("batch not oldest first: got %s", pending[0].EventID)
	}

	if err := s.MarkProcessed(ctx, pending[0].ID, time.Now().UTC()); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	remaining, err := s.PendingEvents(ctx, 10)
	if err != nil {
		t.Fatalf("PendingEvents after mark: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("remaining = %d, want 1", len(remaining))
	}
	if remaining[0].Type != string(events.TypeMonitorUp) {
		t.Errorf("remaining type = %s, want monitor.up", remaining[0].Type)
	}
}

func TestPendingEventsRespectsLimit(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s)
	monitor := seedMonitor(t, s, user.ID)

	for i := 0; i < 5; i++ {
		appendTestEvent(t, s, user.ID, monitor.ID, events.TypeMonitorDown)
	}

	pending, err := s.PendingEvents(context.Background(), 3)
	if err != nil {
		t.Fatalf("PendingEvents: %v", err)
	}
	if len(pending) != 3 {
		t.Errorf("pending = %d, want limit 3", len(pending))
	}
}

func seedRule(t *testing.T, s *Store, userID uint, monitorID *uint, subscribed []events.Type, channel string, enabled bool) *models.NotificationRule {
	t.Helper()
	endpoint := &models.NotificationEndpoint{
		UserID:  userID,
		Channel: channel,
		Address: fmt.Sprintf("target-%s@example.com", uuid.NewString()),
	}
	if err := s.CreateEndpoint(context.Background(), endpoint); err != nil {
		t.Fatalf("seed endpoint: %v", err)
	}

	names := make([]string, len(subscribed))
	for i, e := range subscribed {
		names[i] = string(e)
	}
	raw, _ := json.Marshal(names)

	rule := &models.NotificationRule{
		UserID:     userID,
		MonitorID:  monitorID,
		Events:     datatypes.JSON(raw),
		Enabled:    enabled,
		EndpointID: endpoint.ID,
	}
	if err := s.CreateRule(context.Background(), rule); err != nil {
		t.Fatalf("seed rule: %v", err)
	}
	return rule
}

func TestMatchingRulesFiltering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s)
	other := seedUser(t, s)
	monitor := seedMonitor(t, s, user.ID)
	otherMonitor := seedMonitor(t, s, user.ID)

	all := []events.Type{events.TypeMonitorDown, events.TypeMonitorUp}

	global := seedRule(t, s, user.ID, nil, all, types.ChannelEmail, true)
	scoped := seedRule(t, s, user.ID, &monitor.ID, all, types.ChannelWebhook, true)
	seedRule(t, s, user.ID, &otherMonitor.ID, all, types.ChannelEmail, true)                              // other monitor
	seedRule(t, s, user.ID, nil, []events.Type{events.TypeMonitorUp}, types.ChannelEmail, true)           // wrong event
	seedRule(t, s, user.ID, nil, all, types.ChannelEmail, false)                                          // disabled
	seedRule(t, s, other.ID, nil, all, types.ChannelEmail, true)                                          // other user

	rules, err := s.MatchingRules(ctx, user.ID, events.TypeMonitorDown, monitor.ID)
	if err != nil {
		t.Fatalf("MatchingRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules = %d, want 2 (global + scoped)", len(rules))
	}

	ids := map[uint]bool{}
	for _, r := range rules {
		ids[r.ID] = true
		if r.Endpoint.Address == "" {
			t.Error("endpoint should be preloaded")
		}
	}
	if !ids[global.ID] || !ids[scoped.ID] {
		t.Errorf("matched %v, want {%d, %d}", ids, global.ID, scoped.ID)
	}
}

func TestUserByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s)

	got, err := s.UserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID = %d, want %d", got.ID, user.ID)
	}

	if _, err := s.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
