package scenario

import "fmt"

// Error reports why a scenario could not be run. Step is the index of the
// offending stimulus or engagement, or -1 for problems with the spec as a
// whole.
type Error struct {
	Step    int    `json:"step"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("scenario error(step=%d reason=%s): %s", e.Step, e.Reason, e.Message)
}

func specError(reason, format string, args ...any) *Error {
	return &Error{Step: -1, Reason: reason, Message: fmt.Sprintf(format, args...)}
}
