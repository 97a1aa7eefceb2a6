// Package session holds the mutable state of one background-editing
// interaction: the uploaded image, the current result, the processing state
// machine, and the append-only history of past results.
//
// All mutation goes through pure transition functions (transitions.go) applied
// by a Store under a single mutex. Callers never write Session fields directly.
package session

import "errors"

// Status is the processing state of a session.
type Status string

const (
	// StatusIdle means no transform has run since the last upload or reset.
	StatusIdle Status = "idle"
	// StatusProcessing means exactly one transform call is outstanding.
	StatusProcessing Status = "processing"
	// StatusSucceeded means the last transform produced an image.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the last transform ended in an error.
	StatusFailed Status = "failed"
)

// Guard rejections. These are returned synchronously by BeginTransform and
// never change session state.
var (
	// ErrTransformInFlight is returned when a dispatch is attempted while a
	// transform is already processing. Rejected attempts are dropped, not queued.
	ErrTransformInFlight = errors.New("a transform is already in progress")

	// ErrNoOriginal is returned when a dispatch is attempted before any image
	// has been uploaded.
	ErrNoOriginal = errors.New("no image has been uploaded")

	// ErrNoSuchEntry is returned by SelectFromHistory for an unknown entry ID.
	ErrNoSuchEntry = errors.New("no such history entry")
)

// EncodedImage is an image as a byte payload tagged with a media type.
// Instances are treated as immutable once created.
type EncodedImage struct {
	Data      []byte
	MediaType string
}

// Present reports whether the image carries any payload.
func (e *EncodedImage) Present() bool {
	return e != nil && len(e.Data) > 0
}

// ErrorDescriptor describes why the last transform failed.
type ErrorDescriptor struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Session is a snapshot of the editing state. Values are copied out of the
// Store; mutating a snapshot has no effect on the live session.
type Session struct {
	Original  *EncodedImage
	Processed *EncodedImage
	Prompt    string
	Status    Status
	Err       *ErrorDescriptor
}
