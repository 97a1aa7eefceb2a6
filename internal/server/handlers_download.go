package server

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// downloadPrefix names downloaded files: backdrop-<epoch-millis>.png.
const downloadPrefix = "backdrop"

// zipMethodZstd is the ZIP compression method ID for Zstandard (APPNOTE 6.3.7).
const zipMethodZstd uint16 = 93

func init() {
	// Register Zstandard as a ZIP compressor. PNG payloads barely compress,
	// so speed is preferred over ratio here.
	zip.RegisterCompressor(zipMethodZstd, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
}

// GET /api/image?sessionId=...&which=original|processed
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rec, _ := s.session(w, r.URL.Query().Get("sessionId"))
	if rec == nil {
		return
	}

	snap := rec.store.Snapshot()
	img := snap.Processed
	if r.URL.Query().Get("which") == "original" {
		img = snap.Original
	}
	if !img.Present() {
		httpError(w, http.StatusNotFound, "no image available")
		return
	}

	w.Header().Set("Content-Type", img.MediaType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

// GET /api/download?sessionId=...
//
// Materializes the current result as an attachment. The name carries a fixed
// product prefix and an epoch-millis suffix. No session state changes.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rec, _ := s.session(w, r.URL.Query().Get("sessionId"))
	if rec == nil {
		return
	}

	snap := rec.store.Snapshot()
	if !snap.Processed.Present() {
		httpError(w, http.StatusNotFound, "no result to download")
		return
	}

	filename := fmt.Sprintf("%s-%d.png", downloadPrefix, time.Now().UnixMilli())
	w.Header().Set("Content-Type", snap.Processed.MediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(snap.Processed.Data)
}

// GET /api/download/all?sessionId=...
//
// Bundles every history entry into one ZIP, newest first, zstd-compressed.
func (s *Server) handleDownloadAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rec, _ := s.session(w, r.URL.Query().Get("sessionId"))
	if rec == nil {
		return
	}

	entries := rec.store.History()
	if len(entries) == 0 {
		httpError(w, http.StatusNotFound, "history is empty")
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, e := range entries {
		hdr := &zip.FileHeader{
			Name:     fmt.Sprintf("%s-%02d-%d.png", downloadPrefix, i+1, e.CreatedAt.UnixMilli()),
			Method:   zipMethodZstd,
			Modified: e.CreatedAt,
		}
		f, err := zw.CreateHeader(hdr)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create ZIP entry")
			httpError(w, http.StatusInternalServerError, "failed to build ZIP")
			return
		}
		if _, err := f.Write(e.Image.Data); err != nil {
			log.Error().Err(err).Msg("Failed to write ZIP entry")
			httpError(w, http.StatusInternalServerError, "failed to build ZIP")
			return
		}
	}
	if err := zw.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to finalize ZIP")
		httpError(w, http.StatusInternalServerError, "failed to build ZIP")
		return
	}

	filename := fmt.Sprintf("%s-history-%d.zip", downloadPrefix, time.Now().UnixMilli())
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
