package transform

import (
	"fmt"
	"strings"
)

// Mode selects what happens to the background.
type Mode string

const (
	// ModeRemove isolates the subject on a clean solid background.
	ModeRemove Mode = "remove"
	// ModeReplace puts the subject into a described scene.
	ModeReplace Mode = "replace"
)

// removeInstruction is the fixed editing instruction for ModeRemove.
const removeInstruction = "Remove the background from this photo. " +
	"Isolate the main subject exactly as it is and place it on a solid, " +
	"clean, uniform light background. Do not alter the subject."

// replaceInstructionFmt combines background replacement with a requirement
// that subject lighting be matched to the new scene.
const replaceInstructionFmt = "Replace the background of this photo with %s. " +
	"Keep the main subject unchanged, but adjust the lighting and color " +
	"grading on the subject so it blends naturally into the new scene."

// Request is the payload a dispatch sends to the image model.
type Request struct {
	Mode        Mode
	Instruction string
}

// BuildRequest turns a mode and optional prompt into an editing instruction.
// For ModeRemove the prompt is ignored. For ModeReplace a non-empty prompt is
// required; an empty one is rejected with an invalid_request error before any
// external call.
func BuildRequest(mode Mode, prompt string) (Request, error) {
	switch mode {
	case ModeRemove:
		return Request{Mode: ModeRemove, Instruction: removeInstruction}, nil
	case ModeReplace:
		prompt = strings.TrimSpace(prompt)
		if prompt == "" {
			return Request{}, invalidRequestf("a background description is required to replace the background")
		}
		return Request{
			Mode:        ModeReplace,
			Instruction: fmt.Sprintf(replaceInstructionFmt, prompt),
		}, nil
	default:
		return Request{}, invalidRequestf("unknown transform mode %q", string(mode))
	}
}
