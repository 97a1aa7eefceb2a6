// Package ingest turns one raw uploaded file into an encoded image ready for
// editing, and extracts capture metadata where the file carries any.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/backdrop-studio/internal/session"
)

// maxUploadBytes caps a single upload at 30 MB.
const maxUploadBytes = 30 * 1024 * 1024

// ErrNotImage is returned when the payload is not an accepted image type.
var ErrNotImage = errors.New("file is not a supported image type")

// ErrEmptyFile is returned when the upload carries no bytes.
var ErrEmptyFile = errors.New("uploaded file is empty")

// allowedMediaTypes is the content-type allowlist for uploads.
var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
	"image/tiff": true,
	"image/bmp":  true,
}

// FromReader reads exactly one uploaded file into an EncodedImage. The
// declared content type is trusted when it is on the allowlist; otherwise the
// type is sniffed from the payload. The session is untouched until the result
// is installed by the caller, so no partial state is ever observable.
func FromReader(r io.Reader, declaredType string) (session.EncodedImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return session.EncodedImage{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return session.EncodedImage{}, ErrEmptyFile
	}
	if len(data) > maxUploadBytes {
		return session.EncodedImage{}, fmt.Errorf("upload exceeds %d byte limit", maxUploadBytes)
	}

	mediaType := resolveMediaType(declaredType, data)
	if !allowedMediaTypes[mediaType] {
		return session.EncodedImage{}, fmt.Errorf("%w: %s", ErrNotImage, mediaType)
	}

	log.Debug().
		Str("media_type", mediaType).
		Int("bytes", len(data)).
		Msg("Upload ingested")

	return session.EncodedImage{Data: data, MediaType: mediaType}, nil
}

// resolveMediaType prefers an allowlisted declared type and falls back to
// content sniffing. Parameters like "; charset=..." are stripped first.
func resolveMediaType(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if allowedMediaTypes[declared] {
		return declared
	}
	return http.DetectContentType(data)
}
