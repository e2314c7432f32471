package health

import "github.com/sarthak7846/uptime-monitor/internal/types"

// Hysteresis thresholds: a monitor goes DOWN after failureThreshold
// consecutive failures and recovers after successThreshold consecutive
// successes.
const (
	FailureThreshold = 3
	SuccessThreshold = 2
)

// Transition is the outcome of applying one probe result to a monitor's
// persisted state.
type Transition struct {
	Status          string
	Failures        int
	Successes       int
	StartIncident   bool
	ResolveIncident bool
}

// Evaluate applies the hysteresis state machine to one probe outcome. It is
// pure: the caller persists the returned state and performs the flagged
// incident side effects.
func Evaluate(status string, failures, successes int, healthy bool) Transition {
	next := Transition{Status: status, Failures: failures, Successes: successes}

	if healthy {
		next.Failures = 0

		if status == types.MonitorStatusDown {
			next.Successes = successes + 1
			if next.Successes >= SuccessThreshold {
				next.Status = types.MonitorStatusUp
				next.Successes = 0
				next.ResolveIncident = true
			}
		} else {
			// no streak accrues while already up
			next.Successes = 0
		}

		if status == types.MonitorStatusPending {
			next.Status = types.MonitorStatusUp
		}
		return next
	}

	next.Failures = failures + 1
	next.Successes = 0

	if next.Failures >= FailureThreshold {
		if status == types.MonitorStatusUp || status == types.MonitorStatusPending {
			next.Status = types.MonitorStatusDown
			next.StartIncident = true
		}
		// cap so the counter does not grow unbounded while down
		next.Failures = FailureThreshold
	}
	return next
}
