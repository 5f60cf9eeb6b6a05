package ui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abdul-hamid-achik/marketscout/internal/llm"
)

// Braille spinner animation frames
var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner provides animated terminal feedback during rate limit waits
type Spinner struct {
	output *Renderer
}

// NewSpinner creates a spinner attached to a renderer
func NewSpinner(output *Renderer) *Spinner {
	return &Spinner{
		output: output,
	}
}

// Wait displays a countdown until info.Duration elapses or the context is
// cancelled. It blocks until complete, so it satisfies llm.WaitCallback.
func (s *Spinner) Wait(ctx context.Context, info llm.WaitInfo) error {
	// Short waits skip the display to avoid flicker
	if info.Duration < 500*time.Millisecond {
		select {
		case <-time.After(info.Duration):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if !s.output.IsTTY() {
		return s.staticWait(ctx, info)
	}

	return s.animatedWait(ctx, info)
}

// staticWait prints a single line and waits (for piped output)
func (s *Spinner) staticWait(ctx context.Context, info llm.WaitInfo) error {
	msg := fmt.Sprintf("ℹ Rate limited: waiting %s", formatDuration(info.Duration))
	if info.MaxAttempts > 0 {
		msg += fmt.Sprintf(" (retry %d/%d", info.Attempt, info.MaxAttempts)
		if info.Reason != "" {
			msg += ", " + info.Reason
		}
		msg += ")"
	} else if info.Reason != "" {
		msg += fmt.Sprintf(" (%s)", info.Reason)
	}
	fmt.Fprintln(os.Stderr, msg)

	select {
	case <-time.After(info.Duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// animatedWait shows an animated countdown on stderr
func (s *Spinner) animatedWait(ctx context.Context, info llm.WaitInfo) error {
	startTime := time.Now()
	frameIndex := 0
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	defer s.cleanup()

	for {
		elapsed := time.Since(startTime)
		remaining := max(info.Duration-elapsed, 0)

		frame := string(spinnerFrames[frameIndex])
		line := s.buildStatusLine(frame, info, remaining)

		fmt.Fprint(os.Stderr, ClearLine+CursorStart+line)

		if remaining == 0 {
			return nil
		}

		select {
		case <-ticker.C:
			frameIndex = (frameIndex + 1) % len(spinnerFrames)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Spinner) buildStatusLine(frame string, info llm.WaitInfo, remaining time.Duration) string {
	var line string

	if s.output.UseColors() {
		line = fmt.Sprintf("%s%s%s %sRate limited%s", Cyan, frame, Reset, Yellow, Reset)
	} else {
		line = fmt.Sprintf("%s Rate limited", frame)
	}

	if info.MaxAttempts > 0 {
		if s.output.UseColors() {
			line += fmt.Sprintf(" %s|%s Retry %d/%d", Dim, Reset, info.Attempt, info.MaxAttempts)
		} else {
			line += fmt.Sprintf(" | Retry %d/%d", info.Attempt, info.MaxAttempts)
		}
	}

	if info.Reason != "" {
		if s.output.UseColors() {
			line += fmt.Sprintf(" %s|%s %s", Dim, Reset, info.Reason)
		} else {
			line += fmt.Sprintf(" | %s", info.Reason)
		}
	}

	remainingStr := formatDuration(remaining)
	if s.output.UseColors() {
		line += fmt.Sprintf(" %s|%s %s%s remaining%s", Dim, Reset, Bold, remainingStr, Reset)
	} else {
		line += fmt.Sprintf(" | %s remaining", remainingStr)
	}

	return line
}

// cleanup clears the spinner line completely
func (s *Spinner) cleanup() {
	if s.output.IsTTY() {
		fmt.Fprint(os.Stderr, ClearLine+CursorStart)
	}
}

// formatDuration formats a duration for display (45s, 1m30s, 5m00s)
func formatDuration(d time.Duration) string {
	d = max(d.Round(time.Second), 0)

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes == 0 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%02ds", minutes, seconds)
}
