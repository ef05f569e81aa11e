package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/freelancekenya/kazi/internal/pkg/metrics"
)

// metricsTransport wraps an http.RoundTripper to collect metrics on backend API calls
type metricsTransport struct {
	base http.RoundTripper
}

// NewMetricsTransport creates a transport wrapper that records Prometheus
// metrics for every backend API call made through it.
func NewMetricsTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &metricsTransport{base: base}
}

// RoundTrip implements http.RoundTripper, wrapping the base transport with metrics collection
func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}

	metrics.RecordAPICall(req.Method, normalizeEndpoint(req.URL.Path), statusCode, duration, err)

	return resp, err
}

// normalizeEndpoint strips any mount prefix so metrics label by the API
// endpoint itself (e.g. "/api/get-jobs/" and "/get-jobs/" both label "/get-jobs/")
func normalizeEndpoint(path string) string {
	if idx := strings.LastIndex(strings.TrimSuffix(path, "/"), "/"); idx > 0 {
		return path[idx:]
	}
	return path
}
