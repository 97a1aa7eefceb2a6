package transform

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/backdrop-studio/internal/session"
)

// Service is the external image-generation boundary. Implementations return
// the edited image, or an error wrapping ErrNoImage when the call completed
// without producing one.
type Service interface {
	GenerateImage(ctx context.Context, img session.EncodedImage, instruction string) (session.EncodedImage, error)
}

// Thumbnailer derives a small preview for a history entry. It may return nil;
// the entry then carries no thumbnail.
type Thumbnailer func(img session.EncodedImage) *session.EncodedImage

// Dispatcher owns the single in-flight call to the image service for one
// session. It validates the request, claims the Processing slot atomically
// through the store, performs the call, and applies exactly one of the
// success or failure transitions on every exit path.
type Dispatcher struct {
	store *session.Store
	svc   Service
	thumb Thumbnailer
}

// NewDispatcher wires a dispatcher to a session store and a service.
func NewDispatcher(store *session.Store, svc Service) *Dispatcher {
	return &Dispatcher{store: store, svc: svc}
}

// WithThumbnailer attaches a thumbnail generator for history entries.
func (d *Dispatcher) WithThumbnailer(t Thumbnailer) *Dispatcher {
	d.thumb = t
	return d
}

// Dispatch runs one transform to completion. Synchronous rejections
// (invalid request, no upload, already processing) return before any external
// call; afterwards the returned error mirrors what was recorded on the
// session.
func (d *Dispatcher) Dispatch(ctx context.Context, mode Mode, prompt string) error {
	token, req, original, err := d.begin(mode, prompt)
	if err != nil {
		return err
	}
	return d.run(ctx, token, req, prompt, original)
}

// DispatchAsync performs the synchronous validation and guard steps, then
// completes the call in the background. Callers observe the outcome by
// polling the session state.
func (d *Dispatcher) DispatchAsync(ctx context.Context, mode Mode, prompt string) error {
	token, req, original, err := d.begin(mode, prompt)
	if err != nil {
		return err
	}
	go func() {
		// The caller's context dies when its HTTP handler returns; the call
		// runs to completion regardless.
		if err := d.run(context.WithoutCancel(ctx), token, req, prompt, original); err != nil {
			log.Debug().Err(err).Msg("Background transform ended in failure")
		}
	}()
	return nil
}

// begin validates the request and claims the in-flight slot. Validation runs
// first so an invalid request never touches session status, and the prompt is
// recorded only once the guard has accepted the dispatch: a rejected attempt
// leaves the session untouched, prompt included.
func (d *Dispatcher) begin(mode Mode, prompt string) (uint64, Request, session.EncodedImage, error) {
	req, err := BuildRequest(mode, prompt)
	if err != nil {
		return 0, Request{}, session.EncodedImage{}, err
	}
	token, original, err := d.store.BeginTransform()
	if err != nil {
		return 0, Request{}, session.EncodedImage{}, err
	}
	if req.Mode == ModeReplace {
		d.store.SetPrompt(prompt)
	}
	log.Info().
		Str("mode", string(req.Mode)).
		Int("image_bytes", len(original.Data)).
		Msg("Transform dispatched")
	return token, req, original, nil
}

// run performs the external call and applies the terminal transition. The
// processing flag is always released: both exit paths below end in a store
// transition.
func (d *Dispatcher) run(ctx context.Context, token uint64, req Request, prompt string, original session.EncodedImage) error {
	start := time.Now()
	out, err := d.svc.GenerateImage(ctx, original, req.Instruction)
	if err != nil {
		var terr *Error
		if errors.Is(err, ErrNoImage) {
			terr = emptyResultError(err)
		} else {
			terr = transportError(err)
		}
		d.store.FailTransform(token, terr.Descriptor())
		log.Error().
			Err(err).
			Str("mode", string(req.Mode)).
			Str("kind", string(terr.Kind)).
			Dur("duration", time.Since(start)).
			Msg("Transform failed")
		return terr
	}

	entry := session.HistoryEntry{
		ID:        uuid.NewString(),
		Image:     out,
		Mode:      string(req.Mode),
		Prompt:    prompt,
		CreatedAt: time.Now(),
	}
	if d.thumb != nil {
		entry.Thumb = d.thumb(out)
	}
	d.store.CompleteTransform(token, entry)

	log.Info().
		Str("mode", string(req.Mode)).
		Str("entry", entry.ID).
		Int("output_bytes", len(out.Data)).
		Dur("duration", time.Since(start)).
		Msg("Transform complete")
	return nil
}
