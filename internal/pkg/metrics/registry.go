package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend API Metrics
var (
	// APICalls tracks total backend API calls by method, endpoint, and status code
	APICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kazi_api_calls_total",
			Help: "Total backend API calls by method, endpoint, and status",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIDuration tracks backend API call latency
	APIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "kazi_api_call_duration_ms",
			Help:                            "Backend API call duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "endpoint"},
	)

	// APIErrors tracks backend API errors by endpoint and error type
	APIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kazi_api_errors_total",
			Help: "Total backend API errors by endpoint and error type",
		},
		[]string{"endpoint", "error_type"},
	)
)

// Session Reconciliation Metrics
var (
	// Reconciliations tracks session reconciliation passes by outcome
	Reconciliations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kazi_session_reconciliations_total",
			Help: "Total session reconciliation passes by outcome",
		},
		[]string{"outcome"},
	)

	// ReconciliationDuration tracks how long a full reconciliation pass takes
	ReconciliationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:                            "kazi_session_reconciliation_duration_ms",
			Help:                            "Session reconciliation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
	)

	// StaleReconciliations counts reconciliations discarded because a newer
	// identity event superseded them before they finished
	StaleReconciliations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kazi_session_stale_reconciliations_total",
			Help: "Reconciliation passes discarded after being superseded",
		},
	)
)

// Activation Polling Metrics
var (
	// ActivationPolls tracks activation status poll attempts by result
	ActivationPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kazi_activation_polls_total",
			Help: "Activation status poll attempts by result",
		},
		[]string{"result"},
	)
)

// Reconciliation outcome label values
const (
	OutcomeSignedOut     = "signed_out"
	OutcomeAuthenticated = "authenticated"
	OutcomeDegraded      = "degraded_profile"
	OutcomeNewUser       = "new_user"
	OutcomeError         = "error"
)
