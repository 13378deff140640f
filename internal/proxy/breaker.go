package proxy

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/errors"
)

// BreakerSettings tune the circuit breaker.
type BreakerSettings struct {
	Name             string
	MaxRequests      uint32        // allowed through while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open-state duration before half-open
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerSettings returns settings suited to an interactive client.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:             "proxy",
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// Breaker wraps an Invoker in a circuit breaker. Transport failures and
// provider 5xx trip it; malformed responses and 4xx do not.
type Breaker struct {
	next Invoker
	cb   *gobreaker.CircuitBreaker
}

var _ Invoker = (*Breaker)(nil)

// NewBreaker wraps next.
func NewBreaker(next Invoker, s BreakerSettings, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: countsAsSuccess,
	})
	return &Breaker{next: next, cb: cb}
}

// Invoke forwards to the wrapped Invoker unless the breaker is open, in which
// case it fails fast with CONNECTION_FAILED.
func (b *Breaker) Invoke(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.Invoke(ctx, req)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.NewConnectionFailed(err)
		}
		return nil, err
	}
	return out.(*ChatResponse), nil
}

// State reports the breaker state name.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	switch errors.CodeOf(err) {
	case errors.ErrConnectionFailed:
		return false
	case errors.ErrProviderError:
		var cErr *errors.ClarityError
		if errors.As(err, &cErr) {
			if status, ok := cErr.Details["upstream_status"].(int); ok && status < 500 {
				return true
			}
		}
		return false
	default:
		return true
	}
}
