package metrics

import (
	"strconv"
	"strings"
	"time"
)

// RecordAPICall records backend API call metrics consistently
// method: HTTP method ("GET", "POST")
// endpoint: normalized endpoint path (e.g., "/get-user-profile/")
// statusCode: HTTP status code (0 if the request never reached the backend)
// duration: time taken for the call
// err: transport error (nil if a response was received)
func RecordAPICall(method, endpoint string, statusCode int, duration time.Duration, err error) {
	ms := float64(duration.Milliseconds())
	APIDuration.WithLabelValues(method, endpoint).Observe(ms)
	APICalls.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()

	if err != nil || statusCode >= 400 {
		APIErrors.WithLabelValues(endpoint, classifyAPIError(statusCode, err)).Inc()
	}
}

// classifyAPIError categorizes backend API errors for metrics
func classifyAPIError(statusCode int, err error) string {
	if err != nil {
		errStr := strings.ToLower(err.Error())
		switch {
		case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
			return "timeout"
		case strings.Contains(errStr, "connection") || strings.Contains(errStr, "connect") || strings.Contains(errStr, "refused"):
			return "connection"
		case strings.Contains(errStr, "canceled") || strings.Contains(errStr, "cancelled"):
			return "canceled"
		default:
			return "transport"
		}
	}

	switch {
	case statusCode == 404:
		return "not_found"
	case statusCode == 401 || statusCode == 403:
		return "unauthorized"
	case statusCode == 429:
		return "rate_limited"
	case statusCode >= 500:
		return "server"
	case statusCode >= 400:
		return "client"
	default:
		return "none"
	}
}
