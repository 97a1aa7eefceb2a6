package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/backdrop-studio/internal/ingest"
	"github.com/fpang/backdrop-studio/internal/session"
)

// stateResponse is the renderer contract: everything a UI needs to decide
// between awaiting-upload, have-image, and processing-overlay states.
type stateResponse struct {
	SessionID    string                   `json:"sessionId"`
	Status       session.Status           `json:"status"`
	HasOriginal  bool                     `json:"hasOriginal"`
	HasProcessed bool                     `json:"hasProcessed"`
	Prompt       string                   `json:"prompt"`
	Error        *session.ErrorDescriptor `json:"error,omitempty"`
	History      []historyItem            `json:"history"`
	Meta         *ingest.Meta             `json:"meta,omitempty"`
}

// historyItem is the metadata view of one ledger entry; image bytes are
// fetched separately.
type historyItem struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Prompt    string    `json:"prompt,omitempty"`
	MediaType string    `json:"mediaType"`
	CreatedAt time.Time `json:"createdAt"`
	HasThumb  bool      `json:"hasThumb"`
}

func (s *Server) stateOf(rec *sessionRecord) stateResponse {
	// One lock acquisition for both, so the rendered status and history agree.
	snap, entries := rec.store.View()
	items := make([]historyItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyItem{
			ID:        e.ID,
			Mode:      e.Mode,
			Prompt:    e.Prompt,
			MediaType: e.Image.MediaType,
			CreatedAt: e.CreatedAt,
			HasThumb:  e.Thumb.Present(),
		})
	}
	return stateResponse{
		SessionID:    rec.id,
		Status:       snap.Status,
		HasOriginal:  snap.Original.Present(),
		HasProcessed: snap.Processed.Present(),
		Prompt:       snap.Prompt,
		Error:        snap.Err,
		History:      items,
		Meta:         rec.getMeta(),
	}
}

// POST /api/session
func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rec := s.createSession()
	respondJSON(w, http.StatusCreated, s.stateOf(rec))
}

// GET /api/session/state?sessionId=...
func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rec, _ := s.session(w, r.URL.Query().Get("sessionId"))
	if rec == nil {
		return
	}
	respondJSON(w, http.StatusOK, s.stateOf(rec))
}

// POST /api/session/reset
// Body: {"sessionId": "uuid"}
//
// Start over: clears the uploaded image, the result, the prompt, any error,
// and the whole history ledger. An outstanding transform is not cancelled;
// its late result is dropped by the store's generation check.
func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, _ := s.session(w, req.SessionID)
	if rec == nil {
		return
	}
	rec.store.Reset()
	rec.setMeta(nil)
	log.Info().Str("sessionId", rec.id).Msg("Session reset")
	respondJSON(w, http.StatusOK, s.stateOf(rec))
}

// session resolves a session ID, writing the error response itself when the
// ID is malformed or unknown.
func (s *Server) session(w http.ResponseWriter, id string) (*sessionRecord, error) {
	rec, err := s.lookupSession(id)
	if err != nil {
		if err == errUnknownSession {
			httpError(w, http.StatusNotFound, "unknown session")
		} else {
			httpError(w, http.StatusBadRequest, err.Error())
		}
		return nil, err
	}
	return rec, nil
}
