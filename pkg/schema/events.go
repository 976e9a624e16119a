// pkg/schema/events.go
package schema

type ProcessingStage string

const (
	StageValidation ProcessingStage = "validation"
	StageSending    ProcessingStage = "sending"
	StageCompleted  ProcessingStage = "completed"
	StageFailed     ProcessingStage = "failed"
)

type FailureType string

const (
	FailureTypeRetryable  FailureType = "retryable"
	FailureTypePermanent  FailureType = "permanent"
	FailureTypeValidation FailureType = "validation"
)

// UpscaleDone is published per processed image when an event bus is configured.
type UpscaleDone struct {
	ID            string      `json:"id"`
	InputPath     string      `json:"input_path"`
	OutputPath    string      `json:"output_path"`
	UpscaleFactor int         `json:"upscale_factor"`
	Format        string      `json:"format"`
	Status        string      `json:"status"`
	NewSizeKB     int64       `json:"new_size_kb,omitempty"`
	NewResolution string      `json:"new_resolution,omitempty"`
	Error         string      `json:"error,omitempty"`
	FailureType   FailureType `json:"failure_type,omitempty"`
	HappenedAt    int64       `json:"happened_at"`
}

// BatchDone summarises a complete directory run.
type BatchDone struct {
	InputDir   string `json:"input_dir"`
	OutputDir  string `json:"output_dir"`
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	HappenedAt int64  `json:"happened_at"`
}
