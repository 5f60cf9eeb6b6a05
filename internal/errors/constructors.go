package errors

import "fmt"

// LLMRequestFailed creates an error for when an LLM request fails.
func LLMRequestFailed(model string, cause error) *ScoutError {
	return &ScoutError{
		Category:  CategoryLLM,
		Code:      "llm_request_failed",
		Message:   fmt.Sprintf("LLM request failed (model=%s)", model),
		Retryable: true,
		Cause:     cause,
	}
}

// LLMStreamFailed creates an error for when answer streaming breaks mid-response.
func LLMStreamFailed(model string, cause error) *ScoutError {
	return &ScoutError{
		Category:  CategoryLLM,
		Code:      "llm_stream_failed",
		Message:   fmt.Sprintf("LLM stream failed (model=%s)", model),
		Retryable: true,
		Cause:     cause,
	}
}

// LLMRateLimited creates an error for a 429 that exhausted all retries.
func LLMRateLimited(cause error) *ScoutError {
	return &ScoutError{
		Category:  CategoryLLM,
		Code:      "llm_rate_limited",
		Message:   "LLM rate limit exceeded after retries",
		Retryable: true,
		Cause:     cause,
	}
}

// ToolNotFound creates an error for when a requested tool does not exist.
func ToolNotFound(name string) *ScoutError {
	return &ScoutError{
		Category:  CategoryTool,
		Code:      "tool_not_found",
		Message:   fmt.Sprintf("tool %q not found", name),
		Retryable: false,
	}
}

// ToolExecutionFailed creates an error for when a tool execution fails.
// Retryability depends on the underlying cause.
func ToolExecutionFailed(name string, cause error) *ScoutError {
	return &ScoutError{
		Category:  CategoryTool,
		Code:      "tool_execution_failed",
		Message:   fmt.Sprintf("tool %q execution failed", name),
		Retryable: IsRetryable(cause),
		Cause:     cause,
	}
}

// MaxIterationsReached creates an error for when the agent loop exceeds its iteration limit.
func MaxIterationsReached(iterations int) *ScoutError {
	return &ScoutError{
		Category:  CategoryAgent,
		Code:      "max_iterations_reached",
		Message:   fmt.Sprintf("agent loop exceeded %d iterations", iterations),
		Retryable: false,
	}
}

// ConfigLoadFailed creates an error for when configuration loading fails.
func ConfigLoadFailed(path string, cause error) *ScoutError {
	return &ScoutError{
		Category:  CategoryConfig,
		Code:      "config_load_failed",
		Message:   fmt.Sprintf("failed to load config from %q", path),
		Retryable: false,
		Cause:     cause,
	}
}

// MissingAPIKey creates an error for a data source without credentials.
func MissingAPIKey(source string) *ScoutError {
	return &ScoutError{
		Category:  CategoryConfig,
		Code:      "missing_api_key",
		Message:   fmt.Sprintf("no API key configured for %s", source),
		Retryable: false,
	}
}

// ResultNotFound creates an error for a stale or unknown result pointer.
func ResultNotFound(id string) *ScoutError {
	return &ScoutError{
		Category:  CategoryStore,
		Code:      "result_not_found",
		Message:   fmt.Sprintf("stored result %q not found", id),
		Retryable: false,
	}
}

// DataSourceError creates an error for a non-2xx or malformed provider response.
func DataSourceError(source string, status int, cause error) *ScoutError {
	retryable := status == 429 || status >= 500
	return &ScoutError{
		Category:  CategoryData,
		Code:      "data_source_error",
		Message:   fmt.Sprintf("%s returned status %d", source, status),
		Retryable: retryable,
		Cause:     cause,
	}
}
