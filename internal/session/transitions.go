package session

// Pure state transitions. Each takes a Session by value and returns the next
// state; the Store applies them under its mutex so the check-and-transition in
// beginTransform is atomic with respect to concurrent dispatch attempts.

// setOriginal installs a freshly ingested image and resets all derived state.
func setOriginal(s Session, img EncodedImage) Session {
	s.Original = &img
	s.Processed = nil
	s.Err = nil
	s.Status = StatusIdle
	return s
}

// setPrompt records the user's background description.
func setPrompt(s Session, prompt string) Session {
	s.Prompt = prompt
	return s
}

// beginTransform claims the single in-flight slot. Succeeded and Failed count
// as eligible: every terminal state folds back into Processing on the next
// dispatch. The previous error is cleared on entry.
func beginTransform(s Session) (Session, error) {
	if s.Status == StatusProcessing {
		return s, ErrTransformInFlight
	}
	if !s.Original.Present() {
		return s, ErrNoOriginal
	}
	s.Err = nil
	s.Status = StatusProcessing
	return s, nil
}

// completeTransform installs the transform result. Processed is only ever set
// here and in selectProcessed.
func completeTransform(s Session, img EncodedImage) Session {
	s.Processed = &img
	s.Err = nil
	s.Status = StatusSucceeded
	return s
}

// failTransform records the failure. Processed keeps its pre-call value so an
// error never destroys an earlier result.
func failTransform(s Session, desc ErrorDescriptor) Session {
	s.Err = &desc
	s.Status = StatusFailed
	return s
}

// selectProcessed shows a history entry's image. Viewing history is not an
// edit: status and error are left alone.
func selectProcessed(s Session, img EncodedImage) Session {
	s.Processed = &img
	return s
}

// resetSession returns the empty starting state.
func resetSession(Session) Session {
	return Session{Status: StatusIdle}
}
