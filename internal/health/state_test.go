package health

import (
	"testing"

	"github.com/sarthak7846/uptime-monitor/internal/types"
)

func TestEvaluateHysteresis(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		failures  int
		successes int
		healthy   bool
		want      Transition
	}{
		{
			name:   "pending shortcut to up on first healthy probe",
			status: types.MonitorStatusPending, healthy: true,
			want: Transition{Status: types.MonitorStatusUp},
		},
		{
			name:   "healthy while up resets counters",
			status: types.MonitorStatusUp, failures: 2, successes: 0, healthy: true,
			want: Transition{Status: types.MonitorStatusUp},
		},
		{
			name:   "first failure while up does not transition",
			status: types.MonitorStatusUp, healthy: false,
			want: Transition{Status: types.MonitorStatusUp, Failures: 1},
		},
		{
			name:   "second failure while up does not transition",
			status: types.MonitorStatusUp, failures: 1, healthy: false,
			want: Transition{Status: types.MonitorStatusUp, Failures: 2},
		},
		{
			name:   "third failure transitions to down and starts incident",
			status: types.MonitorStatusUp, failures: 2, healthy: false,
			want: Transition{Status: types.MonitorStatusDown, Failures: FailureThreshold, StartIncident: true},
		},
		{
			name:   "failure while pending counts toward threshold",
			status: types.MonitorStatusPending, failures: 2, healthy: false,
			want: Transition{Status: types.MonitorStatusDown, Failures: FailureThreshold, StartIncident: true},
		},
		{
			name:   "failure while already down stays capped and quiet",
			status: types.MonitorStatusDown, failures: FailureThreshold, healthy: false,
			want: Transition{Status: types.MonitorStatusDown, Failures: FailureThreshold},
		},
		{
			name:   "first success while down does not recover",
			status: types.MonitorStatusDown, failures: FailureThreshold, healthy: true,
			want: Transition{Status: types.MonitorStatusDown, Successes: 1},
		},
		{
			name:   "second success recovers and resolves incident",
			status: types.MonitorStatusDown, successes: 1, healthy: true,
			want: Transition{Status: types.MonitorStatusUp, ResolveIncident: true},
		},
		{
			name:   "failure while down resets the success streak",
			status: types.MonitorStatusDown, failures: FailureThreshold, successes: 1, healthy: false,
			want: Transition{Status: types.MonitorStatusDown, Failures: FailureThreshold},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.status, tt.failures, tt.successes, tt.healthy)
			if got != tt.want {
				t.Errorf("Evaluate(%s, %d, %d, %v) = %+v, want %+v",
					tt.status, tt.failures, tt.successes, tt.healthy, got, tt.want)
			}
		})
	}
}

func TestEvaluateFailureCounterNeverExceedsThreshold(t *testing.T) {
	status, failures, successes := types.MonitorStatusUp, 0, 0
	for i := 0; i < 10; i++ {
		next := Evaluate(status, failures, successes, false)
		if next.Failures > FailureThreshold {
			t.Fatalf("failure counter grew to %d after %d probes", next.Failures, i+1)
		}
		status, failures, successes = next.Status, next.Failures, next.Successes
	}
	if status != types.MonitorStatusDown {
		t.Errorf("status = %s, want DOWN", status)
	}
}
