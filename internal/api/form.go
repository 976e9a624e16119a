package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Form field names are fixed by the remote API contract.
const (
	fieldImage   = "image"
	fieldFactor  = "upscale_factor"
	fieldFormat  = "format"
	fieldQuality = "upscale_quality"
	fieldModel   = "model"
)

type formOptions struct {
	Quality string
	Model   string
}

// buildForm assembles the multipart/form-data payload for a single upscale
// request: the image bytes, the decimal upscale factor, and the normalized
// format, plus the optional quality/model passthrough fields. Each request
// gets its own boundary token.
func buildForm(image []byte, filename string, factor int, format string, opts formOptions) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := w.SetBoundary("upscale-" + uuid.NewString()); err != nil {
		return nil, "", fmt.Errorf("set boundary: %w", err)
	}

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldImage, filename))
	hdr.Set("Content-Type", sniffImageType(image))
	part, err := w.CreatePart(hdr)
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", fmt.Errorf("write image part: %w", err)
	}

	if err := w.WriteField(fieldFactor, strconv.Itoa(factor)); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", fieldFactor, err)
	}
	if err := w.WriteField(fieldFormat, normalizeFormat(format)); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", fieldFormat, err)
	}
	if opts.Quality != "" {
		if err := w.WriteField(fieldQuality, opts.Quality); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", fieldQuality, err)
		}
	}
	if opts.Model != "" {
		if err := w.WriteField(fieldModel, opts.Model); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", fieldModel, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// normalizeFormat uppercases the requested output format and folds the JPEG
// alias onto JPG, which is the spelling the remote service expects.
func normalizeFormat(format string) string {
	f := strings.ToUpper(strings.TrimSpace(format))
	if f == "JPEG" {
		f = "JPG"
	}
	return f
}

// sniffImageType detects the payload content type from its magic bytes,
// defaulting to image/jpeg when detection comes back with nothing usable.
func sniffImageType(data []byte) string {
	n := len(data)
	if n > 512 {
		n = 512
	}
	ct := http.DetectContentType(data[:n])
	if !strings.HasPrefix(ct, "image/") {
		return "image/jpeg"
	}
	return ct
}
