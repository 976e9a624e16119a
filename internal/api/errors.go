package api

import "fmt"

// APIError is a non-200 response from the upscale service. It is terminal:
// retries cover transport faults, not application-level rejections.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upscale api: status %d: %s", e.StatusCode, e.Message)
}

// RetryExhaustedError reports that every send attempt failed. Last carries
// the error from the final attempt.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("upscale request failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }
