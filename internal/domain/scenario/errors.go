package scenario

import (
	"fmt"
	"strings"

	"github.com/Strob0t/scenariogen/internal/domain"
)

// ConfigError reports a structurally invalid scenario. It matches
// domain.ErrConfiguration with errors.Is.
type ConfigError struct {
	Agent      string   // agent label, e.g. "green_agent" or "participant 'judge'"
	Field      string   // offending scenario field, if any
	Reason     string   // human readable description
	Duplicates []string // sorted duplicated participant names
}

func (e *ConfigError) Error() string {
	if len(e.Duplicates) > 0 {
		return "duplicate participant names found: " + strings.Join(e.Duplicates, ", ") +
			"; each participant must have a unique name"
	}
	if e.Agent == "" {
		return e.Reason
	}
	return e.Agent + " " + e.Reason
}

// Unwrap lets errors.Is match domain.ErrConfiguration.
func (e *ConfigError) Unwrap() error { return domain.ErrConfiguration }

// ResolutionError reports a failed catalog lookup for a specific agent.
type ResolutionError struct {
	Agent     string
	CatalogID string
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: resolve agentbeats_id %q: %v", e.Agent, e.CatalogID, e.Err)
}

// Unwrap exposes both domain.ErrResolution and the lookup cause.
func (e *ResolutionError) Unwrap() []error {
	return []error{domain.ErrResolution, e.Err}
}
