// Package limiter paces requests to the catalog API, honoring Retry-After
// windows handed back on 429 responses.
package limiter

import (
	"context"
	"strconv"
	"sync"
	"time"
)

func New(delay time.Duration) *Limiter {
	return &Limiter{delay: delay}
}

type Limiter struct {
	mu     sync.Mutex
	delay  time.Duration
	nextAt time.Time
}

// Wait blocks until the next request is allowed, or the context is canceled.
func (lim *Limiter) Wait(ctx context.Context) error {
	lim.mu.Lock()
	nextAt := lim.nextAt
	lim.mu.Unlock()

	if nextAt.IsZero() {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Until(nextAt)):
		return nil
	}
}

// SetNextAt pushes the next allowed request out by the given Retry-After
// header value, in seconds. An empty value defaults to one minute.
func (lim *Limiter) SetNextAt(secondsStr string) error {
	if secondsStr == "" {
		secondsStr = "60"
	}
	seconds, err := strconv.ParseInt(secondsStr, 10, 64)
	if err != nil {
		return err
	}
	waitTime := time.Duration(seconds)*time.Second + time.Second

	lim.mu.Lock()
	lim.nextAt = time.Now().Add(waitTime)
	lim.mu.Unlock()
	return nil
}

// Delay schedules the next request after the limiter's base delay.
func (lim *Limiter) Delay() {
	lim.mu.Lock()
	lim.nextAt = time.Now().Add(lim.delay)
	lim.mu.Unlock()
}
