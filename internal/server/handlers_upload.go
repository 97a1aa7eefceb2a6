package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fpang/backdrop-studio/internal/ingest"
)

// maxUploadFormBytes bounds the multipart form held in memory.
const maxUploadFormBytes = 32 << 20

// POST /api/upload
// Multipart form: sessionId=<uuid>, file=<image>
//
// Accepts one file. A multi-file batch is not an error: the first file is
// used and the rest are silently ignored. On success the session's original
// image is replaced and all derived state (result, error) cleared.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadFormBytes); err != nil {
		httpError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	rec, _ := s.session(w, r.FormValue("sessionId"))
	if rec == nil {
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		httpError(w, http.StatusBadRequest, "a file is required")
		return
	}
	if len(files) > 1 {
		log.Debug().Int("count", len(files)).Msg("Multiple files uploaded, using the first")
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		httpError(w, http.StatusBadRequest, "failed to open uploaded file")
		return
	}
	defer f.Close()

	img, err := ingest.FromReader(f, fh.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, ingest.ErrNotImage) || errors.Is(err, ingest.ErrEmptyFile) {
			httpError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("sessionId", rec.id).Msg("Upload ingestion failed")
		httpError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	rec.store.SetOriginal(img)
	rec.setMeta(ingest.ExtractMeta(img.Data))

	log.Info().
		Str("sessionId", rec.id).
		Str("filename", fh.Filename).
		Str("mediaType", img.MediaType).
		Int("bytes", len(img.Data)).
		Msg("Image uploaded")

	respondJSON(w, http.StatusOK, s.stateOf(rec))
}
