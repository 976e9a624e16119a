// cmd/upscaler/config.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sunnysniper/upscaler/internal/api"
	"github.com/sunnysniper/upscaler/internal/upscale"
)

// apiKeyPlaceholder is the marker shipped in sample configs; a key still
// containing it was never filled in.
const apiKeyPlaceholder = "YOUR_API_KEY"

type config struct {
	InputDir       string
	OutputDir      string
	Factor         int
	Format         string
	APIKey         string
	Endpoint       string
	Quality        string
	Model          string
	HTTPTimeout    time.Duration
	NATSURL        string
	EventsSubject  string
	MatchUppercase bool
}

func loadConfig() (config, error) {
	cfg := config{
		InputDir:       getenv("UPSCALE_INPUT_DIR", "./images"),
		OutputDir:      getenv("UPSCALE_OUTPUT_DIR", "./upscaled"),
		Format:         getenv("UPSCALE_FORMAT", "JPG"),
		APIKey:         getenv("PICSART_API_KEY", ""),
		Endpoint:       getenv("UPSCALE_ENDPOINT", api.DefaultEndpoint),
		Quality:        getenv("UPSCALE_QUALITY", ""),
		Model:          getenv("UPSCALE_MODEL", ""),
		NATSURL:        getenv("NATS_URL", ""),
		EventsSubject:  getenv("SUBJECT_IMAGE_UPSCALE_DONE", "images.upscale.done"),
		MatchUppercase: getenv("UPSCALE_MATCH_UPPERCASE", "true") == "true",
	}

	factor, err := parsePositiveInt(getenv("UPSCALE_FACTOR", "2"), "UPSCALE_FACTOR")
	if err != nil {
		return config{}, err
	}
	cfg.Factor = factor

	timeout, err := time.ParseDuration(getenv("UPSCALE_HTTP_TIMEOUT", "120s"))
	if err != nil {
		return config{}, fmt.Errorf("invalid UPSCALE_HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	return cfg, nil
}

func (c config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PICSART_API_KEY is required")
	}
	if strings.Contains(c.APIKey, apiKeyPlaceholder) {
		return fmt.Errorf("PICSART_API_KEY still contains the %s placeholder", apiKeyPlaceholder)
	}
	if c.Factor <= 0 {
		return fmt.Errorf("upscale factor must be greater than zero (got %d)", c.Factor)
	}
	if _, err := upscale.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}

func parsePositiveInt(value string, name string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero (got %d)", name, v)
	}
	return v, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
