package cache

import (
	"context"
	"errors"
	"io"
	"net"
	"time"
)

// ErrNetwork marks backend failures caused by the connection rather than
// the request (timeouts, resets, closed sockets).
var ErrNetwork = errors.New("network error")

type retryable struct{ err error }

func (r retryable) Error() string { return r.err.Error() }
func (r retryable) Unwrap() error { return r.err }

// Retryable marks err as worth another attempt. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryable{err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	return errors.As(err, new(retryable))
}

// transient marks connection-level failures as retryable network errors.
// Redis replies such as WRONGTYPE pass through unchanged.
func transient(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return Retryable(errors.Join(ErrNetwork, err))
	}
	return err
}

// Backoff retries an operation with doubling delays.
type Backoff struct {
	Attempts int
	Delay    time.Duration // before the second attempt
}

// DefaultBackoff is used by the Redis backend.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 200 * time.Millisecond}

// Do calls fn until it succeeds, returns an error not marked Retryable, or
// the attempts run out. The last error is returned.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for i := 0; i < max(b.Attempts, 1); i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}
