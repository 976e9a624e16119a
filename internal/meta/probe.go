package meta

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
)

// ResolutionUnknown is recorded when no prober can inspect a file. Probe
// failures never fail the pipeline.
const ResolutionUnknown = "unknown"

// ResolutionFunc reports the "WxH" pixel dimensions of an image file.
type ResolutionFunc func(ctx context.Context, path string) (string, error)

// IdentifyProbe shells out to ImageMagick's identify tool.
func IdentifyProbe(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath("identify"); err != nil {
		return "", fmt.Errorf("identify not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "identify", "-format", "%wx%h", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("identify failed: %w\nOutput: %s", err, string(out))
	}

	res := strings.TrimSpace(string(out))
	if res == "" {
		return "", fmt.Errorf("identify produced no output for %s", path)
	}
	return res, nil
}

// DecodeProbe decodes the image in-process and reads its bounds.
func DecodeProbe(ctx context.Context, path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	b := img.Bounds()
	return fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), nil
}

// ChainProbe tries each prober in order and returns the first answer.
func ChainProbe(probes ...ResolutionFunc) ResolutionFunc {
	return func(ctx context.Context, path string) (string, error) {
		var last error
		for _, probe := range probes {
			res, err := probe(ctx, path)
			if err == nil {
				return res, nil
			}
			last = err
		}
		if last == nil {
			last = fmt.Errorf("no resolution probe configured")
		}
		return "", last
	}
}

// DefaultProbe prefers the external identify tool and falls back to decoding
// the image natively.
func DefaultProbe() ResolutionFunc {
	return ChainProbe(IdentifyProbe, DecodeProbe)
}
