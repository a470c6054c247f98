// Package scenario defines the multi-agent scenario entities and their
// structural validation.
package scenario

import (
	"fmt"
	"sort"
)

// Role distinguishes the single coordinator from the participants.
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleParticipant Role = "participant"
)

// Fixed service names. Participants may not use them.
const (
	CoordinatorName = "green-agent"
	AggregatorName  = "agentbeats-client"
)

// Agent is one participant in the scenario as declared by the operator.
type Agent struct {
	Name     string
	Role     Role
	Identity Identity
	Alias    string            // explicit routing-path name (agent_name)
	Env      map[string]string // declared environment, never mutated
}

// Label is the agent reference used in operator-facing messages.
func (a Agent) Label() string {
	if a.Role == RoleCoordinator {
		return "green_agent"
	}
	return fmt.Sprintf("participant '%s'", a.Name)
}

// CatalogID returns the catalog id when the agent is catalog-resolved.
func (a Agent) CatalogID() (string, bool) {
	id, ok := a.Identity.(CatalogID)
	return id.ID, ok
}

// Scenario is the parsed input: one coordinator, ordered participants and
// an opaque config block passed through to the routing manifest.
type Scenario struct {
	Coordinator  Agent
	Participants []Agent
	Config       map[string]any
}

// Agents returns the coordinator followed by the participants in declaration order.
func (s *Scenario) Agents() []Agent {
	all := make([]Agent, 0, len(s.Participants)+1)
	all = append(all, s.Coordinator)
	return append(all, s.Participants...)
}

// Validate checks role assignment, identity presence and name uniqueness.
func (s *Scenario) Validate() error {
	if s.Coordinator.Role != RoleCoordinator {
		return &ConfigError{Agent: s.Coordinator.Label(), Field: "role", Reason: "must have the coordinator role"}
	}
	if s.Coordinator.Identity == nil {
		return &ConfigError{Agent: s.Coordinator.Label(), Field: "image", Reason: "must have either 'image' or 'agentbeats_id' field"}
	}

	for i := range s.Participants {
		p := &s.Participants[i]
		if p.Name == "" {
			return &ConfigError{Agent: fmt.Sprintf("participant #%d", i+1), Field: "name", Reason: "must have a name"}
		}
		if p.Role != RoleParticipant {
			return &ConfigError{Agent: p.Label(), Field: "role", Reason: "must have the participant role"}
		}
		if p.Name == CoordinatorName || p.Name == AggregatorName {
			return &ConfigError{Agent: p.Label(), Field: "name", Reason: "uses a reserved service name"}
		}
		if p.Identity == nil {
			return &ConfigError{Agent: p.Label(), Field: "image", Reason: "must have either 'image' or 'agentbeats_id' field"}
		}
	}

	return CheckUniqueNames(s.Participants)
}

// CheckUniqueNames fails with a *ConfigError listing every duplicated name once.
func CheckUniqueNames(agents []Agent) error {
	seen := make(map[string]int, len(agents))
	for _, a := range agents {
		seen[a.Name]++
	}

	var dups []string
	for name, n := range seen {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	return &ConfigError{Field: "name", Duplicates: dups}
}
