package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// GET /api/history?sessionId=...
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rec, _ := s.session(w, r.URL.Query().Get("sessionId"))
	if rec == nil {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": s.stateOf(rec).History,
	})
}

// POST /api/history/select
// Body: {"sessionId": "uuid", "entryId": "uuid"}
//
// Shows a past result. This is a read-only view: status, error, and the
// ledger are untouched, and no new history entry is created.
func (s *Server) handleHistorySelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		SessionID string `json:"sessionId"`
		EntryID   string `json:"entryId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, _ := s.session(w, req.SessionID)
	if rec == nil {
		return
	}
	if err := validateEntryID(req.EntryID); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := rec.store.SelectFromHistory(req.EntryID); err != nil {
		httpError(w, http.StatusNotFound, err.Error())
		return
	}

	log.Debug().
		Str("sessionId", rec.id).
		Str("entryId", req.EntryID).
		Msg("History entry selected")

	respondJSON(w, http.StatusOK, s.stateOf(rec))
}

// GET /api/history/image?sessionId=...&entryId=...&kind=full|thumb
func (s *Server) handleHistoryImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rec, _ := s.session(w, r.URL.Query().Get("sessionId"))
	if rec == nil {
		return
	}

	entryID := r.URL.Query().Get("entryId")
	if err := validateEntryID(entryID); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	entry, ok := rec.store.HistoryEntry(entryID)
	if !ok {
		httpError(w, http.StatusNotFound, "no such history entry")
		return
	}

	img := entry.Image
	if r.URL.Query().Get("kind") == "thumb" && entry.Thumb.Present() {
		img = *entry.Thumb
	}

	w.Header().Set("Content-Type", img.MediaType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}
