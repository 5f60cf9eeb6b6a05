package tools

import (
	"sync"
	"time"
)

// breakerState tracks how a data provider is being treated.
type breakerState int

const (
	breakerClosed   breakerState = iota // provider healthy, requests pass
	breakerOpen                         // provider failing, requests rejected
	breakerHalfOpen                     // cooldown elapsed, probing with one request
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// circuitBreaker backs off a failing data provider instead of hammering it.
// After maxFailures consecutive failures the breaker opens and rejects
// requests until cooldown passes, then lets a single probe through.
type circuitBreaker struct {
	mu sync.Mutex

	state       breakerState
	failures    int
	probeOK     int // consecutive probe successes while half-open
	probing     bool
	openedAt    time.Time
	maxFailures int
	cooldown    time.Duration
}

// probesToClose is how many half-open successes close the breaker again.
const probesToClose = 2

func newCircuitBreaker(maxFailures int, cooldown time.Duration) *circuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &circuitBreaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
	}
}

// Allow reports whether a request may go to the provider right now.
func (b *circuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(b.openedAt) > b.cooldown {
			b.state = breakerHalfOpen
			b.probeOK = 0
			b.probing = true
			return true
		}
		return false
	default: // half-open, one probe at a time
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
}

// RecordSuccess notes a successful provider response.
func (b *circuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerHalfOpen:
		b.probing = false
		b.probeOK++
		if b.probeOK >= probesToClose {
			b.state = breakerClosed
			b.failures = 0
			b.probeOK = 0
		}
	case breakerClosed:
		b.failures = 0
	}
}

// RecordFailure notes a failed provider response, opening the breaker when
// the failure threshold is hit or any half-open probe fails.
func (b *circuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.openedAt = time.Now()
	b.failures++

	switch b.state {
	case breakerClosed:
		if b.failures >= b.maxFailures {
			b.state = breakerOpen
		}
	case breakerHalfOpen:
		b.probing = false
		b.state = breakerOpen
		b.probeOK = 0
	}
}

// State returns the current breaker state.
func (b *circuitBreaker) State() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker closed. Used by tests.
func (b *circuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = breakerClosed
	b.failures = 0
	b.probeOK = 0
	b.probing = false
}
