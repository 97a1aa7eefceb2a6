package server

import (
	"errors"
	"fmt"
	"regexp"
)

// uuidRegex matches UUID format: 8-4-4-4-12 lowercase hex with dashes.
var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

var errUnknownSession = errors.New("unknown session")

func validateSessionID(id string) error {
	if !uuidRegex.MatchString(id) {
		return fmt.Errorf("invalid sessionId: must be a UUID (e.g., a1b2c3d4-e5f6-7890-abcd-ef1234567890)")
	}
	return nil
}

func validateEntryID(id string) error {
	if !uuidRegex.MatchString(id) {
		return fmt.Errorf("invalid entryId: must be a UUID")
	}
	return nil
}
