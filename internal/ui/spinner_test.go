package ui

import (
	"context"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/marketscout/internal/llm"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "0s"},
		{"seconds only", 45 * time.Second, "45s"},
		{"one minute", 60 * time.Second, "1m00s"},
		{"one minute thirty", 90 * time.Second, "1m30s"},
		{"five minutes", 5 * time.Minute, "5m00s"},
		{"five minutes thirty", 5*time.Minute + 30*time.Second, "5m30s"},
		{"negative rounds to zero", -5 * time.Second, "0s"},
		{"rounds down", 45*time.Second + 400*time.Millisecond, "45s"},
		{"rounds up", 45*time.Second + 600*time.Millisecond, "46s"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := formatDuration(tc.duration)
			if result != tc.expected {
				t.Errorf("formatDuration(%v) = %q, expected %q", tc.duration, result, tc.expected)
			}
		})
	}
}

func TestSpinnerContextCancellation(t *testing.T) {
	spinner := NewSpinner(NewRenderer(false))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- spinner.Wait(ctx, llm.WaitInfo{
			Reason:   "token bucket cooldown",
			Duration: 10 * time.Second,
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Error("Spinner did not respond to context cancellation")
	}
}

func TestSpinnerShortWaitSkipsAnimation(t *testing.T) {
	spinner := NewSpinner(NewRenderer(false))

	start := time.Now()
	err := spinner.Wait(context.Background(), llm.WaitInfo{
		Duration: 100 * time.Millisecond, // below the animation threshold
	})

	elapsed := time.Since(start)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if elapsed < 100*time.Millisecond {
		t.Errorf("Spinner returned too quickly: %v", elapsed)
	}
}

func TestSpinnerBuildStatusLine(t *testing.T) {
	// Colors disabled for predictable output
	output := &Renderer{useColors: false}
	spinner := NewSpinner(output)

	tests := []struct {
		name      string
		frame     string
		info      llm.WaitInfo
		remaining time.Duration
		expected  string
	}{
		{
			name:      "basic wait",
			frame:     "⠋",
			remaining: 45 * time.Second,
			expected:  "⠋ Rate limited | 45s remaining",
		},
		{
			name:      "with retry",
			frame:     "⠹",
			info:      llm.WaitInfo{Attempt: 2, MaxAttempts: 5},
			remaining: 30 * time.Second,
			expected:  "⠹ Rate limited | Retry 2/5 | 30s remaining",
		},
		{
			name:      "with reason",
			frame:     "⠸",
			info:      llm.WaitInfo{Reason: "API returned 429"},
			remaining: 1 * time.Minute,
			expected:  "⠸ Rate limited | API returned 429 | 1m00s remaining",
		},
		{
			name:      "full info",
			frame:     "⠼",
			info:      llm.WaitInfo{Reason: "API returned 429", Attempt: 3, MaxAttempts: 5},
			remaining: 2*time.Minute + 15*time.Second,
			expected:  "⠼ Rate limited | Retry 3/5 | API returned 429 | 2m15s remaining",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := spinner.buildStatusLine(tc.frame, tc.info, tc.remaining)
			if result != tc.expected {
				t.Errorf("buildStatusLine() = %q, expected %q", result, tc.expected)
			}
		})
	}
}
