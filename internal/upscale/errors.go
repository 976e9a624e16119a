package upscale

import (
	"errors"

	"github.com/sunnysniper/upscaler/internal/api"
	"github.com/sunnysniper/upscaler/pkg/schema"
)

// ValidationError rejects a request before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Classify maps a pipeline error onto the event failure taxonomy.
func Classify(err error) schema.FailureType {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return schema.FailureTypeValidation
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return schema.FailureTypePermanent
	}

	// Exhausted retries and everything else count as retryable faults.
	return schema.FailureTypeRetryable
}
