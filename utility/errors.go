package utility

import (
	"errors"
	"fmt"
)

var (
	// ErrNoValidDecision is returned when every candidate scored 0 or the
	// candidate list was empty. Callers retry on the next tick.
	ErrNoValidDecision = errors.New("no valid decision")
	ErrDuplicateID     = errors.New("duplicate action id")
	ErrUnknownAction   = errors.New("unknown action")
)

// DefinitionError reports an invalid catalog entry.
type DefinitionError struct {
	ID     string
	Reason string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid action %q: %s", e.ID, e.Reason)
}
