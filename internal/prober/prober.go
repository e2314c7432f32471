package prober

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Transport-level failure reasons.
const (
	ReasonNetworkError = "NETWORK_ERROR"
	ReasonUnknownError = "UNKNOWN_ERROR"
	ReasonTimeout      = "TIMEOUT"
	ReasonDNSError     = "DNS_ERROR"
	ReasonConnRefused  = "CONNECTION_REFUSED"
)

// Result is the normalized outcome of one probe. Every probe produces exactly
// one Result; transport failures are captured here, never raised.
type Result struct {
	Healthy      bool
	ResponseTime *int // milliseconds, nil when no response arrived
	StatusCode   *int
	Reason       string
}

type Target struct {
	URL     string
	Method  string
	Timeout time.Duration
}

type Prober interface {
	Probe(ctx context.Context, target Target) Result
}

// HTTPProber performs one HTTP request per probe with the target's timeout
// enforced through the request context.
type HTTPProber struct {
	client *http.Client
}

func NewHTTPProber() *HTTPProber {
	return &HTTPProber{client: &http.Client{}}
}

func (p *HTTPProber) Probe(ctx context.Context, target Target) Result {
	ctx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, target.Method, target.URL, nil)
	if err != nil {
		return Result{Healthy: false, Reason: ReasonUnknownError}
	}
	req.Header.Set("User-Agent", "UptimeMonitor/1.0")
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Healthy: false, Reason: classify(err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	elapsed := int(time.Since(start).Milliseconds())
	code := resp.StatusCode

	if code >= 200 && code < 400 {
		return Result{Healthy: true, ResponseTime: &elapsed, StatusCode: &code}
	}

	return Result{
		Healthy:      false,
		ResponseTime: &elapsed,
		StatusCode:   &code,
		Reason:       fmt.Sprintf("HTTP_%d", code),
	}
}

func classify(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ReasonDNSError
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ReasonConnRefused
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return ReasonNetworkError
}
