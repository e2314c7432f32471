package outbox

import (
	"fmt"

	"github.com/sarthak7846/uptime-monitor/internal/events"
)

// Compose renders the subject and HTML body for a notification event.
func Compose(event *events.NotificationEvent) (subject, body string) {
	switch event.Type {
	case events.TypeMonitorDown:
		subject = fmt.Sprintf("🔴 %s is DOWN", event.Data.MonitorName)
		body = fmt.Sprintf(
			"<p><strong>%s</strong> (%s) is down.</p><p>Reason: %s</p><p>Detected at %s.</p>",
			event.Data.MonitorName,
			event.Data.URL,
			reasonOrDefault(event.Data.ErrorMessage),
			event.OccurredAt.Format("2006-01-02 15:04:05 UTC"),
		)
	case events.TypeMonitorUp:
		subject = fmt.Sprintf("🟢 %s is back UP", event.Data.MonitorName)
		body = fmt.Sprintf(
			"<p><strong>%s</strong> (%s) has recovered.</p><p>Back up at %s.</p>",
			event.Data.MonitorName,
			event.Data.URL,
			event.OccurredAt.Format("2006-01-02 15:04:05 UTC"),
		)
	default:
		subject = fmt.Sprintf("Uptime notification for %s", event.Data.MonitorName)
		body = fmt.Sprintf("<p>Event %s for %s.</p>", event.Type, event.Data.URL)
	}
	return subject, body
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return "health check failed"
	}
	return reason
}
