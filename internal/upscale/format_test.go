package upscale

import (
	"errors"
	"testing"

	"github.com/sunnysniper/upscaler/internal/api"
	"github.com/sunnysniper/upscaler/pkg/schema"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in          string
		want        Format
		shouldError bool
	}{
		{"jpg", FormatJPG, false},
		{"JPG", FormatJPG, false},
		{"jpeg", FormatJPG, false},
		{"JPEG", FormatJPG, false},
		{"png", FormatPNG, false},
		{"WEBP", FormatWEBP, false},
		{" webp ", FormatWEBP, false},
		{"gif", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.shouldError {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.in)
				continue
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("ParseFormat(%q): expected *ValidationError, got %T", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatExt(t *testing.T) {
	if FormatJPG.Ext() != "jpg" {
		t.Fatalf("unexpected ext: %s", FormatJPG.Ext())
	}
	if FormatWEBP.Ext() != "webp" {
		t.Fatalf("unexpected ext: %s", FormatWEBP.Ext())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want schema.FailureType
	}{
		{"nil", nil, ""},
		{"validation", &ValidationError{Message: "nope"}, schema.FailureTypeValidation},
		{"api", &api.APIError{StatusCode: 400, Message: "bad"}, schema.FailureTypePermanent},
		{"exhausted", &api.RetryExhaustedError{Attempts: 4, Last: errors.New("timeout")}, schema.FailureTypeRetryable},
		{"unknown", errors.New("boom"), schema.FailureTypeRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
