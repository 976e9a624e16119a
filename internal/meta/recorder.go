// internal/meta/recorder.go
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Recorder appends processing records to the JSON log shared by every run
// that targets the same output directory. Execution is sequential, so the
// read-modify-write cycle needs no locking; anyone adding concurrency must
// serialize Append per output directory.
type Recorder struct {
	probe  ResolutionFunc
	now    func() time.Time
	logger *slog.Logger
}

func NewRecorder(probe ResolutionFunc, logger *slog.Logger) *Recorder {
	if probe == nil {
		probe = DefaultProbe()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{probe: probe, now: time.Now, logger: logger}
}

// Record builds the metadata entry for a completed upscale and appends it to
// the log next to the output file.
func (r *Recorder) Record(ctx context.Context, inputPath, outputPath string, factor int) (*Record, error) {
	origKB, err := fileSizeKB(inputPath)
	if err != nil {
		return nil, err
	}
	newKB, err := fileSizeKB(outputPath)
	if err != nil {
		return nil, err
	}

	rec := Record{
		OriginalFile:       filepath.Base(inputPath),
		UpscaledFile:       filepath.Base(outputPath),
		UpscaleFactor:      factor,
		ProcessedAt:        r.now().Format(time.RFC3339),
		OriginalSizeKB:     origKB,
		NewSizeKB:          newKB,
		OriginalResolution: r.resolve(ctx, inputPath),
		NewResolution:      r.resolve(ctx, outputPath),
	}

	if err := r.Append(filepath.Dir(outputPath), rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Append loads the existing log, appends rec, and rewrites the file with
// indented JSON. A log that exists but does not parse as a JSON array is
// treated the same as an absent one and rewritten.
func (r *Recorder) Append(outputDir string, rec Record) error {
	logPath := filepath.Join(outputDir, LogFilename)
	records := append(r.loadExisting(logPath), rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata log: %w", err)
	}
	if err := os.WriteFile(logPath, data, 0o644); err != nil {
		return fmt.Errorf("write metadata log: %w", err)
	}
	return nil
}

func (r *Recorder) loadExisting(logPath string) []Record {
	data, err := os.ReadFile(logPath)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("read metadata log failed", "path", logPath, "err", err)
		}
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		r.logger.Warn("metadata log is not a JSON array, starting fresh", "path", logPath, "err", err)
		return nil
	}
	return records
}

func (r *Recorder) resolve(ctx context.Context, path string) string {
	res, err := r.probe(ctx, path)
	if err != nil {
		r.logger.Warn("resolution probe failed", "path", path, "err", err)
		return ResolutionUnknown
	}
	return res
}

func fileSizeKB(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size() / 1024, nil
}
