package errors

import (
	"errors"
	"fmt"
)

// Category groups errors by subsystem
type Category string

const (
	CategoryLLM    Category = "llm"
	CategoryTool   Category = "tool"
	CategoryAgent  Category = "agent"
	CategoryConfig Category = "config"
	CategoryStore  Category = "store"
	CategoryData   Category = "data"
)

// ScoutError is the structured error type for the project
type ScoutError struct {
	Category  Category
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *ScoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

func (e *ScoutError) Unwrap() error {
	return e.Cause
}

func (e *ScoutError) Is(target error) bool {
	t, ok := target.(*ScoutError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Category == t.Category
}

// IsRetryable checks whether an error is retryable.
// Returns false for nil errors or non-ScoutError types.
func IsRetryable(err error) bool {
	var se *ScoutError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// GetCategory extracts the error category from a ScoutError.
// Returns an empty Category for nil errors or non-ScoutError types.
func GetCategory(err error) Category {
	var se *ScoutError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}

// GetUserMessage returns a user-friendly message for the error.
// For ScoutError it returns the Message field; for other errors it returns Error().
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *ScoutError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
