package imagefile

import (
	"bytes"
	"image"
	_ "image/jpeg"
	"testing"
)

func TestThumbnailDownscales(t *testing.T) {
	data := pngBytes(t, 900, 600)

	thumb, mime, err := Thumbnail(data, 400)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", mime)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("failed to decode thumbnail: %v", err)
	}
	if cfg.Width > 400 || cfg.Height > 400 {
		t.Errorf("expected thumbnail within 400px, got %dx%d", cfg.Width, cfg.Height)
	}
	// Aspect ratio preserved: 900x600 fits to 400x266
	if cfg.Width != 400 {
		t.Errorf("expected width 400, got %d", cfg.Width)
	}
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	data := pngBytes(t, 100, 80)

	thumb, mime, err := Thumbnail(data, 400)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected re-encode to jpeg, got %q", mime)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("failed to decode thumbnail: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 80 {
		t.Errorf("expected 100x80 preserved, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	if _, _, err := Thumbnail([]byte("not an image"), 400); err == nil {
		t.Error("expected error for undecodable input")
	}
}
