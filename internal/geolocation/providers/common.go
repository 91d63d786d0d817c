package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pontos/nearby-points/internal/places"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff is used by every locator unless overridden.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// permanentError marks failures that retrying cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return permanentError{err: err} }

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		IsSuccessful: func(err error) bool {
			// A lookup that legitimately finds nothing is not an outage.
			var p permanentError
			return err == nil || errors.As(err, &p)
		},
	})
}

// locateWithResilience runs call with retries, exponential backoff and a
// circuit breaker. Permanent errors are returned without retrying.
func locateWithResilience(
	ctx context.Context,
	backoff BackoffConfig,
	cb *gobreaker.CircuitBreaker,
	call func(ctx context.Context) (places.Coordinate, error),
) (places.Coordinate, error) {
	if backoff.MaxRetries < 0 || backoff.InitialInterval <= 0 {
		return places.Coordinate{}, errInvalidConfig
	}

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return places.Coordinate{}, ctx.Err()
		}

		result, err := cb.Execute(func() (interface{}, error) {
			return call(ctx)
		})
		if err == nil {
			c, ok := result.(places.Coordinate)
			if !ok {
				return places.Coordinate{}, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return c, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return places.Coordinate{}, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		var p permanentError
		if errors.As(err, &p) {
			return places.Coordinate{}, p.err
		}

		if attempt >= backoff.MaxRetries {
			return places.Coordinate{}, err
		}

		delay := backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > backoff.MaxInterval && backoff.MaxInterval > 0 {
			delay = backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return places.Coordinate{}, ctx.Err()
		case <-timer.C:
		}
	}
}

// checkStatus classifies an HTTP response status.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return errRateLimited
	case resp.StatusCode >= 500:
		return errServerError
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return permanent(fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode))
	}
	return nil
}
