package api

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
)

// pngHeader is the PNG magic number plus enough trailing bytes for sniffing.
var pngHeader = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 16)...)

func parseForm(t *testing.T, body *bytes.Buffer, contentType string) map[string]string {
	t.Helper()

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}

	fields := map[string]string{}
	reader := multipart.NewReader(body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		data, err := io.ReadAll(part)
		if err != nil {
			t.Fatalf("read part body: %v", err)
		}
		fields[part.FormName()] = string(data)
		if part.FormName() == fieldImage {
			fields["_image_content_type"] = part.Header.Get("Content-Type")
			fields["_image_filename"] = part.FileName()
		}
	}
	return fields
}

func TestBuildFormParts(t *testing.T) {
	body, contentType, err := buildForm(pngHeader, "photo.png", 4, "jpeg", formOptions{})
	if err != nil {
		t.Fatalf("buildForm returned error: %v", err)
	}

	fields := parseForm(t, body, contentType)
	if fields[fieldFactor] != "4" {
		t.Fatalf("unexpected upscale_factor: %q", fields[fieldFactor])
	}
	if fields[fieldFormat] != "JPG" {
		t.Fatalf("expected JPEG coerced to JPG, got %q", fields[fieldFormat])
	}
	if fields["_image_filename"] != "photo.png" {
		t.Fatalf("unexpected image filename: %q", fields["_image_filename"])
	}
	if fields["_image_content_type"] != "image/png" {
		t.Fatalf("expected sniffed image/png, got %q", fields["_image_content_type"])
	}
	if _, ok := fields[fieldQuality]; ok {
		t.Fatal("quality field present without configuration")
	}
}

func TestBuildFormPassthroughFields(t *testing.T) {
	body, contentType, err := buildForm(pngHeader, "photo.png", 2, "png", formOptions{Quality: "enhance", Model: "ultra"})
	if err != nil {
		t.Fatalf("buildForm returned error: %v", err)
	}

	fields := parseForm(t, body, contentType)
	if fields[fieldQuality] != "enhance" {
		t.Fatalf("unexpected quality field: %q", fields[fieldQuality])
	}
	if fields[fieldModel] != "ultra" {
		t.Fatalf("unexpected model field: %q", fields[fieldModel])
	}
}

func TestBuildFormBoundaryPerRequest(t *testing.T) {
	_, first, err := buildForm(pngHeader, "a.png", 2, "png", formOptions{})
	if err != nil {
		t.Fatalf("buildForm returned error: %v", err)
	}
	_, second, err := buildForm(pngHeader, "a.png", 2, "png", formOptions{})
	if err != nil {
		t.Fatalf("buildForm returned error: %v", err)
	}
	if first == second {
		t.Fatalf("boundary reused across requests: %s", first)
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jpeg", "JPG"},
		{"JPEG", "JPG"},
		{"jpg", "JPG"},
		{"png", "PNG"},
		{"webp", "WEBP"},
		{" webp ", "WEBP"},
	}
	for _, tt := range tests {
		if got := normalizeFormat(tt.in); got != tt.want {
			t.Errorf("normalizeFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSniffImageTypeDefaultsToJPEG(t *testing.T) {
	if got := sniffImageType([]byte("definitely not an image")); got != "image/jpeg" {
		t.Fatalf("expected image/jpeg fallback, got %q", got)
	}
	if got := sniffImageType(pngHeader); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
	if got := sniffImageType(nil); !strings.HasPrefix(got, "image/") {
		t.Fatalf("expected image fallback for empty payload, got %q", got)
	}
}
