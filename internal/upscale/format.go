package upscale

import (
	"fmt"
	"strings"
)

// Format identifies an output encoding supported by the remote service.
type Format string

const (
	FormatJPG  Format = "JPG"
	FormatPNG  Format = "PNG"
	FormatWEBP Format = "WEBP"
)

// ParseFormat resolves a user-supplied format name. Matching is
// case-insensitive and the JPEG alias folds onto JPG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "JPG", "JPEG":
		return FormatJPG, nil
	case "PNG":
		return FormatPNG, nil
	case "WEBP":
		return FormatWEBP, nil
	default:
		return "", &ValidationError{Message: fmt.Sprintf("unsupported format %q (supported: JPG, PNG, WEBP)", s)}
	}
}

// Ext returns the lowercase file extension for the format, without the dot.
func (f Format) Ext() string { return strings.ToLower(string(f)) }

func (f Format) String() string { return string(f) }
