package config

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// NewCircuitBreaker creates a circuit breaker that opens after three
// consecutive failures. isSuccessful may be nil, in which case every
// non-nil error counts as a failure.
func NewCircuitBreaker(name string, logger *zap.Logger, isSuccessful func(error) bool) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}

	var timeout time.Duration
	switch name {
	case "course-backend":
		timeout = 15 * time.Second
	default:
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}
