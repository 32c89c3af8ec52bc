package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func fill(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func createTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fill(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
	return buf.Bytes()
}

func createTestPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, fill(w, h, c)); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, p *Photo) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg output, got %s", format)
	}
	return img
}

func TestProcessFormats(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"jpeg", createTestJPEG(t, 100, 80)},
		{"png", createTestPNG(t, 100, 80, color.RGBA{0, 0, 255, 255})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Process(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if p.MIME != "image/jpeg" {
				t.Errorf("expected image/jpeg, got %s", p.MIME)
			}
			if p.Width != 100 || p.Height != 80 {
				t.Errorf("expected 100x80, got %dx%d", p.Width, p.Height)
			}
			decode(t, p)
		})
	}
}

func TestProcessDownscale(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 2000, 1000, 500, 250},
		{"portrait", 600, 1200, 250, 500},
		{"square", 1024, 1024, 500, 500},
		{"sliver", 5000, 2, 500, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Process(bytes.NewReader(createTestJPEG(t, tt.w, tt.h)))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			b := decode(t, p).Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, b.Dx(), b.Dy())
			}
		})
	}
}

func TestProcessTransparentBecomesWhite(t *testing.T) {
	p, err := Process(bytes.NewReader(createTestPNG(t, 10, 10, color.RGBA{})))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	r, g, b, _ := decode(t, p).At(5, 5).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected near-white pixel, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestProcessRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("not an image")},
		{"gif", []byte("GIF89a...")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("expected ErrUnsupported, got %v", err)
			}
		})
	}
}

func TestProcessTooLarge(t *testing.T) {
	data := make([]byte, MaxUploadBytes+1)
	if _, err := Process(bytes.NewReader(data)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}
