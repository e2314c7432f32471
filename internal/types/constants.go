package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Monitor health states. Transitions happen only inside the health engine.
const (
	MonitorStatusPending = "PENDING"
	MonitorStatusUp      = "UP"
	MonitorStatusDown    = "DOWN"
)

const (
	IncidentStatusOpen     = "OPEN"
	IncidentStatusResolved = "RESOLVED"
)

const (
	OutboxStatusPending   = "PENDING"
	OutboxStatusProcessed = "PROCESSED"
)

// Delivery channels for notification endpoints.
const (
	ChannelEmail   = "EMAIL"
	ChannelWebhook = "WEBHOOK"
)

// AllowedMethods are the HTTP methods a monitor may probe with.
var AllowedMethods = []string{"GET", "POST", "HEAD"}

func IsAllowedMethod(method string) bool {
	for _, m := range AllowedMethods {
		if m == method {
			return true
		}
	}
	return false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
