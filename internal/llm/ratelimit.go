package llm

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/marketscout/internal/config"
	"github.com/abdul-hamid-achik/marketscout/internal/logger"
	"github.com/abdul-hamid-achik/marketscout/internal/tokens"
)

// WaitInfo describes a rate limit wait in progress
type WaitInfo struct {
	Duration    time.Duration
	Reason      string // "token bucket cooldown" or "API returned 429"
	Attempt     int    // 1-based, 0 if not a retry
	MaxAttempts int    // 0 if not a retry
}

// WaitCallback is invoked when the client needs to wait due to rate limiting.
// It should block for the given duration or until the context is cancelled.
// If nil, a plain time.After wait is used.
type WaitCallback func(ctx context.Context, info WaitInfo) error

// TokenBucket throttles requests to a tokens-per-minute budget
type TokenBucket struct {
	limiter *rate.Limiter
	mu      sync.Mutex
	onWait  WaitCallback
}

// NewTokenBucket creates a token bucket for the given tokens-per-minute budget
func NewTokenBucket(tokensPerMinute int) *TokenBucket {
	tokensPerSecond := float64(tokensPerMinute) / 60.0
	// Burst allows roughly 10 seconds worth of tokens
	burstSize := tokensPerMinute / 6
	if burstSize < 1000 {
		burstSize = 1000
	}

	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(tokensPerSecond), burstSize),
	}
}

// SetWaitCallback sets a callback invoked while waiting for tokens
func (tb *TokenBucket) SetWaitCallback(cb WaitCallback) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.onWait = cb
}

// Wait blocks until the given number of tokens are available
func (tb *TokenBucket) Wait(ctx context.Context, n int) error {
	tb.mu.Lock()
	onWait := tb.onWait
	tb.mu.Unlock()

	reservation := tb.limiter.ReserveN(time.Now(), n)
	if !reservation.OK() {
		logger.Debug("Rate limit: %d tokens exceed burst size, waiting for availability", n)
	}

	delay := reservation.Delay()
	if delay > 0 {
		logger.Debug("Rate limit: waiting %v for %d tokens", delay, n)

		if onWait != nil {
			if err := onWait(ctx, WaitInfo{Duration: delay, Reason: "token bucket cooldown"}); err != nil {
				reservation.Cancel()
				return err
			}
			return nil
		}

		select {
		case <-time.After(delay):
			return nil
		case <-ctx.Done():
			reservation.Cancel()
			return ctx.Err()
		}
	}

	return nil
}

// RateLimitedClient wraps a Client with proactive throttling and 429 retries
type RateLimitedClient struct {
	inner       Client
	tokenBucket *TokenBucket
	cfg         *config.RateLimitConfig
	onWait      WaitCallback
}

// NewRateLimitedClient wraps client with rate limiting per cfg
func NewRateLimitedClient(client Client, cfg *config.RateLimitConfig) *RateLimitedClient {
	return &RateLimitedClient{
		inner:       client,
		tokenBucket: NewTokenBucket(cfg.TokensPerMinute),
		cfg:         cfg,
	}
}

// SetWaitCallback sets a callback invoked for both token bucket waits and
// 429 retry waits
func (c *RateLimitedClient) SetWaitCallback(cb WaitCallback) {
	c.onWait = cb
	c.tokenBucket.SetWaitCallback(cb)
}

// Invoke sends a prompt with rate limiting and 429 retries
func (c *RateLimitedClient) Invoke(ctx context.Context, prompt string, opts InvokeOptions) (*Message, error) {
	estimated := c.estimateRequest(prompt, opts.SystemPrompt, len(opts.Tools))
	logger.Debug("Rate limit: estimated %d tokens for request", estimated)

	if err := c.tokenBucket.Wait(ctx, estimated); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.waitBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		msg, err := c.inner.Invoke(ctx, prompt, opts)
		if err == nil {
			return msg, nil
		}

		lastErr = err
		if !isRateLimitError(err) {
			return nil, err
		}
		logger.Warn("Rate limit hit (attempt %d/%d): %v", attempt+1, c.cfg.MaxRetries+1, err)
	}

	return nil, lastErr
}

// Stream sends a prompt with rate limiting and 429 retries, streaming the
// reply text
func (c *RateLimitedClient) Stream(ctx context.Context, prompt string, opts StreamOptions) <-chan StreamChunk {
	ch := make(chan StreamChunk, 100)

	go func() {
		defer close(ch)

		estimated := c.estimateRequest(prompt, opts.SystemPrompt, 0)
		logger.Debug("Rate limit: estimated %d tokens for stream request", estimated)

		if err := c.tokenBucket.Wait(ctx, estimated); err != nil {
			ch <- StreamChunk{Err: err}
			return
		}

		var lastErr error
		for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
			if attempt > 0 {
				if err := c.waitBackoff(ctx, attempt); err != nil {
					ch <- StreamChunk{Err: err}
					return
				}
			}

			retry := false
			for chunk := range c.inner.Stream(ctx, prompt, opts) {
				if chunk.Err != nil {
					if isRateLimitError(chunk.Err) {
						lastErr = chunk.Err
						retry = true
						logger.Warn("Rate limit hit on stream (attempt %d/%d): %v", attempt+1, c.cfg.MaxRetries+1, chunk.Err)
						break
					}
					ch <- chunk
					return
				}
				ch <- chunk
			}

			if !retry {
				return
			}
		}

		if lastErr != nil {
			ch <- StreamChunk{Err: lastErr}
		}
	}()

	return ch
}

func (c *RateLimitedClient) estimateRequest(prompt, system string, toolCount int) int {
	estimated := tokens.Estimate(prompt, tokens.KindText)
	estimated += tokens.Estimate(system, tokens.KindText)
	// Tool definitions add roughly 100 tokens each
	estimated += toolCount * 100
	return estimated
}

func (c *RateLimitedClient) waitBackoff(ctx context.Context, attempt int) error {
	delay := c.calculateBackoff(attempt)
	logger.Debug("Rate limit: retry %d/%d, waiting %v", attempt, c.cfg.MaxRetries, delay)

	if c.onWait != nil {
		return c.onWait(ctx, WaitInfo{
			Duration:    delay,
			Reason:      "API returned 429",
			Attempt:     attempt,
			MaxAttempts: c.cfg.MaxRetries,
		})
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// calculateBackoff returns exponential backoff with jitter, capped at MaxDelay
func (c *RateLimitedClient) calculateBackoff(attempt int) time.Duration {
	backoff := float64(c.cfg.BaseDelay) * math.Pow(2, float64(attempt-1))
	backoff += backoff * 0.25 * rand.Float64()
	if backoff > float64(c.cfg.MaxDelay) {
		backoff = float64(c.cfg.MaxDelay)
	}
	return time.Duration(backoff)
}

// isRateLimitError checks if an error is a rate limit (429) error
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "Rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "Too Many Requests")
}
