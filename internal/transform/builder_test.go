package transform

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildRequestRemoveIgnoresPrompt(t *testing.T) {
	withPrompt, err := BuildRequest(ModeRemove, "a beach at sunset")
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	withoutPrompt, err := BuildRequest(ModeRemove, "")
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}

	if withPrompt.Instruction != withoutPrompt.Instruction {
		t.Error("remove instruction should not depend on the prompt")
	}
	if strings.Contains(withPrompt.Instruction, "beach") {
		t.Error("remove instruction leaked the prompt text")
	}
	if !strings.Contains(withPrompt.Instruction, "solid") {
		t.Errorf("remove instruction should ask for a solid background, got %q", withPrompt.Instruction)
	}
}

func TestBuildRequestReplaceEmbedsPromptAndLighting(t *testing.T) {
	req, err := BuildRequest(ModeReplace, "a rainy Tokyo street")
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	if req.Mode != ModeReplace {
		t.Errorf("mode = %q, want %q", req.Mode, ModeReplace)
	}
	if !strings.Contains(req.Instruction, "a rainy Tokyo street") {
		t.Errorf("instruction missing scene description: %q", req.Instruction)
	}
	if !strings.Contains(req.Instruction, "lighting") {
		t.Errorf("instruction should require lighting adjustment: %q", req.Instruction)
	}
}

func TestBuildRequestReplaceRequiresPrompt(t *testing.T) {
	for _, prompt := range []string{"", "   ", "\t\n"} {
		_, err := BuildRequest(ModeReplace, prompt)
		var terr *Error
		if !errors.As(err, &terr) {
			t.Fatalf("BuildRequest(replace, %q) error = %v, want *Error", prompt, err)
		}
		if terr.Kind != KindInvalidRequest {
			t.Errorf("kind = %q, want %q", terr.Kind, KindInvalidRequest)
		}
	}
}

func TestBuildRequestUnknownMode(t *testing.T) {
	_, err := BuildRequest(Mode("sparkle"), "")
	var terr *Error
	if !errors.As(err, &terr) || terr.Kind != KindInvalidRequest {
		t.Errorf("BuildRequest(sparkle) error = %v, want invalid_request", err)
	}
}
