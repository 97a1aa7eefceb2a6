package server

import "net/http"

// routes wires the API endpoints.
//
//	POST /api/session           — create a new editing session
//	GET  /api/session/state     — poll session state (renderer contract)
//	POST /api/session/reset     — start over: clear session and history
//	POST /api/upload            — upload the photo to edit (multipart)
//	POST /api/transform         — dispatch a remove/replace transform
//	POST /api/transform/preset  — set prompt from a preset and dispatch replace
//	GET  /api/presets           — list background presets
//	GET  /api/history           — list history entries, newest first
//	POST /api/history/select    — show a past result (read-only view)
//	GET  /api/history/image     — raw bytes of a history entry (full or thumb)
//	GET  /api/image             — raw bytes of the original or current result
//	GET  /api/download          — current result as a named PNG attachment
//	GET  /api/download/all      — every history entry in one ZIP
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/session", s.handleSessionCreate)
	mux.HandleFunc("/api/session/state", s.handleSessionState)
	mux.HandleFunc("/api/session/reset", s.handleSessionReset)

	mux.HandleFunc("/api/upload", s.handleUpload)

	mux.HandleFunc("/api/transform", s.handleTransform)
	mux.HandleFunc("/api/transform/preset", s.handleTransformPreset)
	mux.HandleFunc("/api/presets", s.handlePresets)

	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/select", s.handleHistorySelect)
	mux.HandleFunc("/api/history/image", s.handleHistoryImage)

	mux.HandleFunc("/api/image", s.handleImage)
	mux.HandleFunc("/api/download", s.handleDownload)
	mux.HandleFunc("/api/download/all", s.handleDownloadAll)

	return mux
}
