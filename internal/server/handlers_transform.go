package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fpang/backdrop-studio/internal/config"
	"github.com/fpang/backdrop-studio/internal/session"
	"github.com/fpang/backdrop-studio/internal/transform"
)

// POST /api/transform
// Body: {"sessionId": "uuid", "mode": "remove"|"replace", "prompt": "..."}
//
// Accepts the dispatch and returns 202 with the processing state; the client
// polls /api/session/state for the outcome. Rejections are synchronous:
// 400 for an invalid request (empty replace prompt, unknown mode), 409 when
// no image is uploaded or a transform is already in flight. A rejected
// attempt is dropped, never queued.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		SessionID string `json:"sessionId"`
		Mode      string `json:"mode"`
		Prompt    string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, _ := s.session(w, req.SessionID)
	if rec == nil {
		return
	}

	s.dispatch(w, r, rec, transform.Mode(req.Mode), req.Prompt)
}

// POST /api/transform/preset
// Body: {"sessionId": "uuid", "presetId": "..."}
//
// Convenience composition of "set prompt" + "dispatch replace" using the
// preset's prompt text.
func (s *Server) handleTransformPreset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		SessionID string `json:"sessionId"`
		PresetID  string `json:"presetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, _ := s.session(w, req.SessionID)
	if rec == nil {
		return
	}

	preset, ok := config.FindPreset(s.presets, req.PresetID)
	if !ok {
		httpError(w, http.StatusBadRequest, "unknown preset: "+req.PresetID)
		return
	}

	s.dispatch(w, r, rec, transform.ModeReplace, preset.Prompt)
}

// GET /api/presets
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"presets": s.presets})
}

// dispatch starts the transform in the background and maps guard rejections
// to status codes.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, rec *sessionRecord, mode transform.Mode, prompt string) {
	err := rec.dispatcher.DispatchAsync(r.Context(), mode, prompt)
	if err == nil {
		respondJSON(w, http.StatusAccepted, s.stateOf(rec))
		return
	}

	switch {
	case errors.Is(err, session.ErrTransformInFlight):
		httpError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNoOriginal):
		httpError(w, http.StatusConflict, err.Error())
	default:
		var terr *transform.Error
		if errors.As(err, &terr) && terr.Kind == transform.KindInvalidRequest {
			httpError(w, http.StatusBadRequest, terr.Message)
			return
		}
		httpError(w, http.StatusInternalServerError, err.Error())
	}
}
