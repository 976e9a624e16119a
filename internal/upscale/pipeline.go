// internal/upscale/pipeline.go
package upscale

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sunnysniper/upscaler/internal/api"
	"github.com/sunnysniper/upscaler/internal/meta"
	"github.com/sunnysniper/upscaler/pkg/schema"
)

// Request describes one image to upscale.
type Request struct {
	InputPath  string
	OutputPath string
	Factor     int
	Format     Format
}

// Upscaler sends image bytes to the remote service and persists the result.
// *api.Client satisfies it.
type Upscaler interface {
	UpscaleToFile(ctx context.Context, p api.UpscaleParams) error
}

// Recorder appends the metadata entry for a completed upscale.
// *meta.Recorder satisfies it.
type Recorder interface {
	Record(ctx context.Context, inputPath, outputPath string, factor int) (*meta.Record, error)
}

// Pipeline runs the full cycle for a single image: validate, send with
// retry, persist the enlarged bytes, and append the metadata record.
type Pipeline struct {
	client   Upscaler
	recorder Recorder
	logger   *slog.Logger
}

func NewPipeline(client Upscaler, recorder Recorder, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{client: client, recorder: recorder, logger: logger}
}

func (p *Pipeline) Process(ctx context.Context, req Request) (*meta.Record, error) {
	p.logger.Debug("processing image", "stage", schema.StageValidation, "input", req.InputPath)
	if err := p.validate(req); err != nil {
		return nil, err
	}

	image, err := os.ReadFile(req.InputPath)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("read input %s: %v", req.InputPath, err)}
	}

	p.logger.Debug("processing image", "stage", schema.StageSending, "input", req.InputPath)
	if err := p.client.UpscaleToFile(ctx, api.UpscaleParams{
		Image:      image,
		Filename:   filepath.Base(req.InputPath),
		Factor:     req.Factor,
		Format:     string(req.Format),
		OutputPath: req.OutputPath,
	}); err != nil {
		p.logger.Debug("processing image", "stage", schema.StageFailed, "input", req.InputPath, "err", err)
		return nil, err
	}

	rec, err := p.recorder.Record(ctx, req.InputPath, req.OutputPath, req.Factor)
	if err != nil {
		return nil, fmt.Errorf("record metadata: %w", err)
	}

	p.logger.Info("image upscaled",
		"stage", schema.StageCompleted,
		"input", req.InputPath,
		"output", req.OutputPath,
		"factor", req.Factor,
		"new_size_kb", rec.NewSizeKB,
	)
	return rec, nil
}

// validate rejects a request before any network attempt: a missing input
// file, an unsupported format, or a non-positive factor.
func (p *Pipeline) validate(req Request) error {
	if req.Factor <= 0 {
		return &ValidationError{Message: fmt.Sprintf("upscale factor must be positive (got %d)", req.Factor)}
	}
	if _, err := ParseFormat(string(req.Format)); err != nil {
		return err
	}
	if _, err := os.Stat(req.InputPath); err != nil {
		return &ValidationError{Message: fmt.Sprintf("input file %s not found", req.InputPath)}
	}
	return nil
}
