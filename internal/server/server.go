// Package server exposes the editing-session API over HTTP.
//
// Each browser session gets its own session store and dispatcher, keyed by a
// server-generated UUID. The server itself only routes and validates;
// all state transitions live in the session and transform packages.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/backdrop-studio/internal/config"
	"github.com/fpang/backdrop-studio/internal/imaging"
	"github.com/fpang/backdrop-studio/internal/ingest"
	"github.com/fpang/backdrop-studio/internal/session"
	"github.com/fpang/backdrop-studio/internal/transform"
)

// Server holds all live editing sessions and the shared image service.
type Server struct {
	mu       sync.Mutex
	sessions map[string]*sessionRecord

	svc     transform.Service
	presets []config.Preset
	thumb   transform.Thumbnailer
}

// sessionRecord is the per-session state the server tracks on top of the
// session store itself.
type sessionRecord struct {
	id         string
	store      *session.Store
	dispatcher *transform.Dispatcher

	mu        sync.Mutex
	meta      *ingest.Meta
	createdAt time.Time
}

func (rec *sessionRecord) setMeta(m *ingest.Meta) {
	rec.mu.Lock()
	rec.meta = m
	rec.mu.Unlock()
}

func (rec *sessionRecord) getMeta() *ingest.Meta {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.meta
}

// New creates a server backed by the given image service and preset catalog.
func New(svc transform.Service, presets []config.Preset) *Server {
	return &Server{
		sessions: make(map[string]*sessionRecord),
		svc:      svc,
		presets:  presets,
		thumb:    historyThumbnailer,
	}
}

// historyThumbnailer is the default thumbnail generator for history entries.
// Thumbnails are a rendering nicety; a failure just means no thumbnail.
func historyThumbnailer(img session.EncodedImage) *session.EncodedImage {
	thumb, err := imaging.Thumbnail(img, imaging.DefaultThumbnailMaxDimension)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to generate history thumbnail")
		return nil
	}
	return &thumb
}

// Handler returns the complete HTTP handler, middleware included.
func (s *Server) Handler() http.Handler {
	return withLogging(withCORS(s.routes()))
}

// createSession registers a new empty session and returns its record.
func (s *Server) createSession() *sessionRecord {
	store := session.NewStore()
	rec := &sessionRecord{
		id:         uuid.NewString(),
		store:      store,
		dispatcher: transform.NewDispatcher(store, s.svc).WithThumbnailer(s.thumb),
		createdAt:  time.Now(),
	}
	s.mu.Lock()
	s.sessions[rec.id] = rec
	s.mu.Unlock()

	log.Info().Str("sessionId", rec.id).Msg("Session created")
	return rec
}

// lookupSession finds a session by ID. The ID must be a well-formed UUID
// before the map is consulted.
func (s *Server) lookupSession(id string) (*sessionRecord, error) {
	if err := validateSessionID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	rec, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, errUnknownSession
	}
	return rec, nil
}
