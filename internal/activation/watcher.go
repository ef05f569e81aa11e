// Package activation watches for account activation after a mobile-money
// payment has been initiated. Payment completion is only observable by
// polling the overview endpoint until is_activated flips true, so the
// watcher runs a bounded poll loop and reports a terminal outcome.
package activation

import (
	"context"
	"log/slog"
	"time"

	"github.com/freelancekenya/kazi/internal/api"
	"github.com/freelancekenya/kazi/internal/pkg/metrics"
)

// Poll schedule observed by the backend's payment settlement window
const (
	DefaultInterval = 5 * time.Second
	DefaultAttempts = 30
)

// Outcome is the terminal result of a watch
type Outcome int

const (
	// Activated means the overview reported is_activated true
	Activated Outcome = iota
	// TimedOut means every attempt was used without seeing activation
	TimedOut
	// Cancelled means the context ended before a terminal poll result
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Activated:
		return "activated"
	case TimedOut:
		return "timed-out"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// OverviewFetcher is the slice of the backend client the watcher needs
type OverviewFetcher interface {
	GetOverview(ctx context.Context, userID string) (*api.Overview, error)
}

// Watcher polls the backend overview for account activation
type Watcher struct {
	backend  OverviewFetcher
	log      *slog.Logger
	interval time.Duration
	attempts int
}

// Option adjusts watcher construction
type Option func(*Watcher)

// WithSchedule overrides the poll interval and attempt budget
func WithSchedule(interval time.Duration, attempts int) Option {
	return func(w *Watcher) {
		w.interval = interval
		w.attempts = attempts
	}
}

// NewWatcher creates a watcher with the default 5-second, 30-attempt schedule
func NewWatcher(backend OverviewFetcher, logger *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		backend:  backend,
		log:      logger.With(slog.String("component", "activation")),
		interval: DefaultInterval,
		attempts: DefaultAttempts,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Wait polls until the account is activated, the attempt budget is spent, or
// ctx ends. Poll errors consume an attempt and the loop continues; a payment
// can settle even while the overview endpoint is briefly unreachable.
func (w *Watcher) Wait(ctx context.Context, userID string) Outcome {
	log := w.log.With(slog.String("user_id", userID))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= w.attempts; attempt++ {
		select {
		case <-ctx.Done():
			log.Info("activation watch cancelled", slog.Int("attempt", attempt))
			return Cancelled
		case <-ticker.C:
		}

		overview, err := w.backend.GetOverview(ctx, userID)
		if err != nil {
			if ctx.Err() != nil {
				return Cancelled
			}
			metrics.ActivationPolls.WithLabelValues("error").Inc()
			log.Warn("activation poll failed",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			continue
		}
		if overview.IsActivated {
			metrics.ActivationPolls.WithLabelValues("activated").Inc()
			log.Info("account activated", slog.Int("attempt", attempt))
			return Activated
		}
		metrics.ActivationPolls.WithLabelValues("pending").Inc()
	}

	log.Warn("activation not confirmed within attempt budget",
		slog.Int("attempts", w.attempts))
	return TimedOut
}
