// internal/batch/batch.go
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sunnysniper/upscaler/internal/meta"
	"github.com/sunnysniper/upscaler/internal/upscale"
	"github.com/sunnysniper/upscaler/pkg/schema"
)

// imageExtensions are the input patterns the runner picks up.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// Processor runs the single-image cycle. *upscale.Pipeline satisfies it.
type Processor interface {
	Process(ctx context.Context, req upscale.Request) (*meta.Record, error)
}

// Notifier publishes result events. *bus.Client satisfies it.
type Notifier interface {
	PublishJSON(subject string, v any) error
}

// FileStatus is the terminal state of one input file.
type FileStatus string

const (
	// FileRejected means pre-flight validation failed and no network call
	// was made.
	FileRejected  FileStatus = "rejected"
	FileSucceeded FileStatus = "succeeded"
	FileFailed    FileStatus = "failed"
)

// FileResult is the audit record the runner keeps per input file.
type FileResult struct {
	Name        string
	Output      string
	Status      FileStatus
	FailureType schema.FailureType
	Error       string
}

// Report aggregates one batch run.
type Report struct {
	Total     int
	Succeeded int
	Results   []FileResult
}

func (r Report) Failed() int { return r.Total - r.Succeeded }

// Success reports whether the batch produced at least one upscaled image.
func (r Report) Success() bool { return r.Succeeded > 0 }

// Options tunes a Runner beyond its collaborators.
type Options struct {
	// MatchUppercase also picks up files whose extension is spelled in
	// uppercase (photo.JPG).
	MatchUppercase bool
	// Notifier and Subject enable result events; a nil Notifier disables
	// publishing entirely.
	Notifier Notifier
	Subject  string
}

// Runner applies the single-image pipeline across every matching file in an
// input directory, strictly sequentially. Each image fully completes or
// fails before the next begins.
type Runner struct {
	pipeline Processor
	logger   *slog.Logger
	opts     Options
}

func NewRunner(pipeline Processor, logger *slog.Logger, opts Options) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{pipeline: pipeline, logger: logger, opts: opts}
}

// Run enumerates image files in inputDir, upscales each into outputDir, and
// aggregates the per-file outcomes. Per-file failures are logged and counted
// and never stop the batch.
func (r *Runner) Run(ctx context.Context, inputDir, outputDir string, factor int, format upscale.Format) (Report, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return Report{}, fmt.Errorf("read input dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("create output dir: %w", err)
	}

	var report Report
	for _, entry := range entries {
		if entry.IsDir() || !r.matches(entry.Name()) {
			continue
		}
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		report.Total++
		name := entry.Name()
		base := strings.TrimSuffix(name, filepath.Ext(name))
		req := upscale.Request{
			InputPath:  filepath.Join(inputDir, name),
			OutputPath: filepath.Join(outputDir, fmt.Sprintf("%s_upscaled.%s", base, format.Ext())),
			Factor:     factor,
			Format:     format,
		}

		result := FileResult{Name: name, Output: req.OutputPath, Status: FileSucceeded}
		rec, perr := r.pipeline.Process(ctx, req)
		if perr != nil {
			result.Status = fileStatus(perr)
			result.FailureType = upscale.Classify(perr)
			result.Error = perr.Error()
			r.logger.Error("upscale failed",
				"input", req.InputPath,
				"status", result.Status,
				"failure_type", result.FailureType,
				"err", perr,
			)
		} else {
			report.Succeeded++
		}
		report.Results = append(report.Results, result)
		r.publishDone(req, rec, perr)
	}

	r.publishBatch(inputDir, outputDir, report)
	return report, nil
}

func (r *Runner) matches(name string) bool {
	ext := filepath.Ext(name)
	if r.opts.MatchUppercase {
		ext = strings.ToLower(ext)
	}
	for _, want := range imageExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

func fileStatus(err error) FileStatus {
	if upscale.Classify(err) == schema.FailureTypeValidation {
		return FileRejected
	}
	return FileFailed
}

func (r *Runner) publishDone(req upscale.Request, rec *meta.Record, cause error) {
	if r.opts.Notifier == nil || r.opts.Subject == "" {
		return
	}

	evt := schema.UpscaleDone{
		ID:            uuid.NewString(),
		InputPath:     req.InputPath,
		OutputPath:    req.OutputPath,
		UpscaleFactor: req.Factor,
		Format:        req.Format.String(),
		Status:        "processed",
		HappenedAt:    time.Now().Unix(),
	}
	if cause != nil {
		evt.Status = "failed"
		evt.Error = cause.Error()
		evt.FailureType = upscale.Classify(cause)
	}
	if rec != nil {
		evt.NewSizeKB = rec.NewSizeKB
		evt.NewResolution = rec.NewResolution
	}

	if err := r.opts.Notifier.PublishJSON(r.opts.Subject, evt); err != nil {
		r.logger.Warn("publish result event failed", "subject", r.opts.Subject, "err", err)
	}
}

func (r *Runner) publishBatch(inputDir, outputDir string, report Report) {
	if r.opts.Notifier == nil || r.opts.Subject == "" {
		return
	}

	done := schema.BatchDone{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Total:      report.Total,
		Succeeded:  report.Succeeded,
		Failed:     report.Failed(),
		HappenedAt: time.Now().Unix(),
	}
	subject := r.opts.Subject + ".batch"
	if err := r.opts.Notifier.PublishJSON(subject, done); err != nil {
		r.logger.Warn("publish batch event failed", "subject", subject, "err", err)
	}
}
