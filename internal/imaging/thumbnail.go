// Package imaging provides pure-Go image resizing for history thumbnails.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder for image.Decode

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder for image.Decode

	"github.com/fpang/backdrop-studio/internal/session"
)

// DefaultThumbnailMaxDimension is the maximum dimension (width or height) for
// history-strip thumbnails.
const DefaultThumbnailMaxDimension = 256

// thumbnailQuality is the JPEG quality for encoded thumbnails.
const thumbnailQuality = 80

// Thumbnail creates a low-resolution JPEG preview of an encoded image,
// preserving aspect ratio. JPEG, PNG, and WebP inputs are supported; those
// cover everything the image model returns.
func Thumbnail(img session.EncodedImage, maxDimension int) (session.EncodedImage, error) {
	src, format, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return session.EncodedImage{}, fmt.Errorf("failed to decode %s image: %w", img.MediaType, err)
	}

	bounds := src.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()
	newWidth, newHeight := fitDimensions(origWidth, origHeight, maxDimension)

	out := src
	if newWidth != origWidth || newHeight != origHeight {
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), src, bounds, draw.Over, nil)
		out = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return session.EncodedImage{}, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	log.Debug().
		Str("format", format).
		Int("orig_width", origWidth).
		Int("orig_height", origHeight).
		Int("new_width", newWidth).
		Int("new_height", newHeight).
		Int("output_size", buf.Len()).
		Msg("Thumbnail generated")

	return session.EncodedImage{Data: buf.Bytes(), MediaType: "image/jpeg"}, nil
}

// fitDimensions scales (width, height) down to fit within maxDimension,
// preserving aspect ratio. Images already within bounds keep their size.
func fitDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	if width > height {
		newWidth := maxDimension
		newHeight := int(float64(height) * float64(maxDimension) / float64(width))
		return newWidth, max(newHeight, 1)
	}

	newHeight := maxDimension
	newWidth := int(float64(width) * float64(maxDimension) / float64(height))
	return max(newWidth, 1), newHeight
}
