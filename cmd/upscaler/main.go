// cmd/upscaler/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sunnysniper/upscaler/internal/api"
	"github.com/sunnysniper/upscaler/internal/batch"
	"github.com/sunnysniper/upscaler/internal/bus"
	"github.com/sunnysniper/upscaler/internal/meta"
	"github.com/sunnysniper/upscaler/internal/upscale"
)

var exampleUsage = strings.TrimSpace(`
  upscaler --input ./photos --output ./photos/upscaled --factor 4
  upscaler --factor 2 --format webp --nats-url nats://127.0.0.1:4222`)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		fatal(logger, "load config", err)
	}

	root := &cobra.Command{
		Use:          "upscaler",
		Short:        "Upscale a directory of images through the Picsart API",
		Example:      exampleUsage,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, logger)
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfg.InputDir, "input", cfg.InputDir, "directory of images to upscale")
	flags.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "directory for upscaled images and the metadata log")
	flags.IntVar(&cfg.Factor, "factor", cfg.Factor, "upscale factor applied to source dimensions")
	flags.StringVar(&cfg.Format, "format", cfg.Format, "output format: JPG, PNG or WEBP (JPEG is an alias for JPG)")
	flags.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "Picsart API key (or PICSART_API_KEY)")
	flags.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "upscale endpoint URL")
	flags.StringVar(&cfg.Quality, "quality", cfg.Quality, "quality tier passed through to the API")
	flags.StringVar(&cfg.Model, "model", cfg.Model, "model name passed through to the API")
	flags.StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS URL for result events (empty disables publishing)")
	flags.StringVar(&cfg.EventsSubject, "events-subject", cfg.EventsSubject, "subject for per-image result events")
	flags.BoolVar(&cfg.MatchUppercase, "match-uppercase", cfg.MatchUppercase, "also match uppercase extensions (.JPG)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	format, err := upscale.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	logger.Info("upscaler starting",
		"input_dir", cfg.InputDir,
		"output_dir", cfg.OutputDir,
		"factor", cfg.Factor,
		"format", format,
		"endpoint", cfg.Endpoint,
		"http_timeout", cfg.HTTPTimeout,
	)

	client := api.NewClient(api.Config{
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
		Quality:  cfg.Quality,
		Model:    cfg.Model,
		Timeout:  cfg.HTTPTimeout,
	}, logger)
	recorder := meta.NewRecorder(nil, logger)
	pipeline := upscale.NewPipeline(client, recorder, logger)

	opts := batch.Options{
		MatchUppercase: cfg.MatchUppercase,
		Subject:        cfg.EventsSubject,
	}
	if cfg.NATSURL != "" {
		nc, err := bus.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer nc.Close()
		logger.Info("connected to NATS", "nats_url", cfg.NATSURL)
		opts.Notifier = nc
	}

	runner := batch.NewRunner(pipeline, logger, opts)
	report, err := runner.Run(ctx, cfg.InputDir, cfg.OutputDir, cfg.Factor, format)
	if err != nil {
		return err
	}

	logger.Info("batch complete",
		"total", report.Total,
		"succeeded", report.Succeeded,
		"failed", report.Failed(),
	)
	if report.Total > 0 && !report.Success() {
		return fmt.Errorf("no images were upscaled (%d attempted)", report.Total)
	}
	return nil
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "err", err)
	logger.Error(msg, attrs...)
	os.Exit(1)
}
