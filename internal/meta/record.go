// internal/meta/record.go
package meta

// LogFilename is the shared metadata log kept next to the upscaled images.
const LogFilename = "upscale_metadata.json"

// Record is one entry in the per-output-directory metadata log. Records are
// appended after each successful upscale and never mutated or deleted.
type Record struct {
	OriginalFile       string `json:"original_file"`
	UpscaledFile       string `json:"upscaled_file"`
	UpscaleFactor      int    `json:"upscale_factor"`
	ProcessedAt        string `json:"processed_at"`
	OriginalSizeKB     int64  `json:"original_size_kb"`
	NewSizeKB          int64  `json:"new_size_kb"`
	OriginalResolution string `json:"original_resolution"`
	NewResolution      string `json:"new_resolution"`
}
