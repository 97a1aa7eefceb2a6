package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/fpang/backdrop-studio/internal/session"
)

func encodePNG(t *testing.T, width, height int) session.EncodedImage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return session.EncodedImage{Data: buf.Bytes(), MediaType: "image/png"}
}

func decodeDimensions(t *testing.T, thumb session.EncodedImage) (int, int) {
	t.Helper()
	out, format, err := image.Decode(bytes.NewReader(thumb.Data))
	if err != nil {
		t.Fatalf("decoding thumbnail: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("thumbnail format = %q, want jpeg", format)
	}
	return out.Bounds().Dx(), out.Bounds().Dy()
}

func TestThumbnailScalesDownLandscape(t *testing.T) {
	thumb, err := Thumbnail(encodePNG(t, 1024, 512), 256)
	if err != nil {
		t.Fatalf("Thumbnail() error = %v", err)
	}
	if thumb.MediaType != "image/jpeg" {
		t.Errorf("media type = %q, want image/jpeg", thumb.MediaType)
	}
	w, h := decodeDimensions(t, thumb)
	if w != 256 || h != 128 {
		t.Errorf("dimensions = %dx%d, want 256x128", w, h)
	}
}

func TestThumbnailScalesDownPortrait(t *testing.T) {
	thumb, err := Thumbnail(encodePNG(t, 300, 600), 256)
	if err != nil {
		t.Fatalf("Thumbnail() error = %v", err)
	}
	w, h := decodeDimensions(t, thumb)
	if w != 128 || h != 256 {
		t.Errorf("dimensions = %dx%d, want 128x256", w, h)
	}
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	thumb, err := Thumbnail(encodePNG(t, 100, 80), 256)
	if err != nil {
		t.Fatalf("Thumbnail() error = %v", err)
	}
	w, h := decodeDimensions(t, thumb)
	if w != 100 || h != 80 {
		t.Errorf("dimensions = %dx%d, want unchanged 100x80", w, h)
	}
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	_, err := Thumbnail(session.EncodedImage{Data: []byte("not an image"), MediaType: "image/png"}, 256)
	if err == nil {
		t.Fatal("Thumbnail() should fail on undecodable input")
	}
}

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		name                  string
		width, height, maxDim int
		wantWidth, wantHeight int
	}{
		{"within bounds", 200, 100, 256, 200, 100},
		{"exact fit", 256, 256, 256, 256, 256},
		{"wide", 2560, 1440, 256, 256, 144},
		{"tall", 1440, 2560, 256, 144, 256},
		{"extreme aspect clamps to 1", 10000, 4, 256, 256, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitDimensions(tt.width, tt.height, tt.maxDim)
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("fitDimensions(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.width, tt.height, tt.maxDim, w, h, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}
