package ingest

import (
	"bytes"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// Meta is capture metadata extracted from the uploaded photo's EXIF block.
// It is display-only and never influences the transform itself.
type Meta struct {
	CameraMake  string    `json:"cameraMake,omitempty"`
	CameraModel string    `json:"cameraModel,omitempty"`
	TakenAt     time.Time `json:"takenAt,omitzero"`
	HasTakenAt  bool      `json:"hasTakenAt"`
}

// ExtractMeta reads EXIF metadata from the image bytes. Extraction is
// best-effort: PNGs and stripped JPEGs carry none, and a parse failure just
// means no metadata, so errors are logged at debug and nil is returned.
func ExtractMeta(data []byte) *Meta {
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		log.Debug().Err(err).Msg("No EXIF metadata in upload")
		return nil
	}

	meta := &Meta{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}

	// Timestamp fallback chain: DateTimeOriginal > CreateDate > ModifyDate.
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		meta.TakenAt = exifData.DateTimeOriginal()
		meta.HasTakenAt = true
	case !exifData.CreateDate().IsZero():
		meta.TakenAt = exifData.CreateDate()
		meta.HasTakenAt = true
	case !exifData.ModifyDate().IsZero():
		meta.TakenAt = exifData.ModifyDate()
		meta.HasTakenAt = true
	}

	if meta.CameraMake == "" && meta.CameraModel == "" && !meta.HasTakenAt {
		return nil
	}
	return meta
}
