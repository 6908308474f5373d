package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter implements a token bucket rate limiter. A fresh limiter starts
// with a full bucket, so it allows one burst's worth of requests
// immediately.
type Limiter struct {
	rate       float64 // tokens per second
	tokens     float64
	maxTokens  float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// New creates a rate limiter allowing rps requests per second with a burst
// of rps tokens.
func New(rps float64) *Limiter {
	return NewWithBurst(rps, rps)
}

// NewWithBurst creates a rate limiter with an explicit burst capacity.
func NewWithBurst(rps, burst float64) *Limiter {
	if rps <= 0 {
		rps = 1.0
	}
	if burst < 1.0 {
		burst = 1.0
	}
	return &Limiter{
		rate:       rps,
		tokens:     burst,
		maxTokens:  burst,
		lastUpdate: time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		ok, deficit := l.take()
		if ok {
			return nil
		}

		// Sleep just long enough for the missing fraction of a token to
		// accrue, then re-check.
		wait := time.Duration(deficit / l.rate * float64(time.Second))
		if wait <= 0 {
			wait = time.Millisecond
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (l *Limiter) take() (bool, float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastUpdate).Seconds()
	l.lastUpdate = now

	l.tokens += elapsed * l.rate
	if l.tokens > l.maxTokens {
		l.tokens = l.maxTokens
	}

	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true, 0
	}
	return false, 1.0 - l.tokens
}
