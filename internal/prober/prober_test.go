package prober

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbeHealthyStatusRange(t *testing.T) {
	for _, code := range []int{200, 204, 301, 399} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		p := NewHTTPProber()
		result := p.Probe(context.Background(), Target{URL: srv.URL, Method: "GET", Timeout: 5 * time.Second})
		srv.Close()

		if !result.Healthy {
			t.Errorf("status %d: expected healthy", code)
		}
		if result.StatusCode == nil || *result.StatusCode != code {
			t.Errorf("status %d: status code not recorded", code)
		}
		if result.ResponseTime == nil {
			t.Errorf("status %d: latency not recorded", code)
		}
		if result.Reason != "" {
			t.Errorf("status %d: unexpected reason %q", code, result.Reason)
		}
	}
}

func TestProbeUnhealthyStatus(t *testing.T) {
	for _, code := range []int{400, 404, 500, 503} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		p := NewHTTPProber()
		result := p.Probe(context.Background(), Target{URL: srv.URL, Method: "GET", Timeout: 5 * time.Second})
		srv.Close()

		if result.Healthy {
			t.Errorf("status %d: expected unhealthy", code)
		}
		if want := fmt.Sprintf("HTTP_%d", code); result.Reason != want {
			t.Errorf("status %d: reason = %q, want %q", code, result.Reason, want)
		}
		if result.ResponseTime == nil || result.StatusCode == nil {
			t.Errorf("status %d: latency and status code should be recorded", code)
		}
	}
}

func TestProbeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewHTTPProber()
	result := p.Probe(context.Background(), Target{URL: srv.URL, Method: "GET", Timeout: 50 * time.Millisecond})

	if result.Healthy {
		t.Fatal("expected unhealthy on timeout")
	}
	if result.Reason != ReasonTimeout {
		t.Errorf("reason = %q, want %q", result.Reason, ReasonTimeout)
	}
	if result.ResponseTime != nil {
		t.Error("no latency should be recorded when no response arrived")
	}
	if result.StatusCode != nil {
		t.Error("no status code should be recorded when no response arrived")
	}
}

func TestProbeConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listens here anymore

	p := NewHTTPProber()
	result := p.Probe(context.Background(), Target{URL: url, Method: "GET", Timeout: 2 * time.Second})

	if result.Healthy {
		t.Fatal("expected unhealthy when the target is unreachable")
	}
	if result.Reason == "" {
		t.Error("a transport failure must carry a reason")
	}
	if result.StatusCode != nil {
		t.Error("no status code should be recorded without a response")
	}
}

func TestProbeInvalidTargetNeverPanics(t *testing.T) {
	p := NewHTTPProber()
	result := p.Probe(context.Background(), Target{URL: "://not-a-url", Method: "GET", Timeout: time.Second})

	if result.Healthy {
		t.Fatal("expected unhealthy for an unparseable target")
	}
	if result.Reason == "" {
		t.Error("expected a reason for an unparseable target")
	}
}

func TestProbeHeadMethod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
	}))
	defer srv.Close()

	p := NewHTTPProber()
	result := p.Probe(context.Background(), Target{URL: srv.URL, Method: "HEAD", Timeout: 5 * time.Second})

	if !result.Healthy {
		t.Fatal("expected healthy HEAD probe")
	}
}
