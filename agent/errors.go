package agent

import (
	"fmt"
	"strings"
)

// ConfigurationError is returned by New when a required collaborator is
// missing. The agent is never constructed in that case.
type ConfigurationError struct {
	Agent   string
	Missing []string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("agent %q misconfigured: missing %s", e.Agent, strings.Join(e.Missing, ", "))
}
