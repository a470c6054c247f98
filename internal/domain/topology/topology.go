// Package topology turns resolved agents into the immutable, renderer-ready
// deployment topology: addresses, health paths and dependency edges.
package topology

import (
	"fmt"
	"maps"

	"github.com/Strob0t/scenariogen/internal/domain/endpoint"
	"github.com/Strob0t/scenariogen/internal/domain/scenario"
)

// Port is the single port every agent listens on. Agents are told apart
// by network name.
const Port = 9009

// defaultEnv is merged under every agent's declared environment.
var defaultEnv = map[string]string{"PYTHONUNBUFFERED": "1"}

// Resolved pairs a declared agent with its concrete image reference.
type Resolved struct {
	Agent scenario.Agent
	Image string
}

// Node is one fully resolved agent service.
type Node struct {
	Name       string
	Role       scenario.Role
	Image      string
	CatalogID  string // empty unless resolved through the catalog
	BasePath   string
	HealthPath string
	Port       int
	DependsOn  []string // services that must be healthy first

	declaredEnv map[string]string
	env         map[string]string
}

// Address is the network-reachable address of the service.
func (n *Node) Address() string {
	return fmt.Sprintf("http://%s:%d", n.Name, n.Port)
}

// Endpoint is the address plus the protocol base path.
func (n *Node) Endpoint() string {
	return n.Address() + n.BasePath
}

// LocalOnly reports whether the image must be run from local content.
func (n *Node) LocalOnly() bool {
	return scenario.IsLocalImage(n.Image)
}

// DeclaredEnv returns a copy of the environment as written in the scenario.
func (n *Node) DeclaredEnv() map[string]string {
	return maps.Clone(n.declaredEnv)
}

// Env returns a copy of the effective environment: defaults, then the
// declared values, then the self-announcing address variable.
func (n *Node) Env() map[string]string {
	return maps.Clone(n.env)
}

// Topology is the resolved coordinator, participants and pass-through config.
type Topology struct {
	Coordinator  Node
	Participants []Node
	Config       map[string]any
	// AggregatorDependsOn lists the services the results aggregator waits for.
	AggregatorDependsOn []string
}

// Nodes returns the coordinator followed by participants in declaration order.
func (t *Topology) Nodes() []*Node {
	nodes := make([]*Node, 0, len(t.Participants)+1)
	nodes = append(nodes, &t.Coordinator)
	for i := range t.Participants {
		nodes = append(nodes, &t.Participants[i])
	}
	return nodes
}

// Build computes the topology. Participant names must be pairwise unique.
// The coordinator depends on every participant; the aggregator depends on
// the coordinator and every participant; participants depend on nothing.
func Build(coordinator Resolved, participants []Resolved, config map[string]any) (*Topology, error) {
	agents := make([]scenario.Agent, len(participants))
	for i := range participants {
		agents[i] = participants[i].Agent
	}
	if err := scenario.CheckUniqueNames(agents); err != nil {
		return nil, err
	}

	names := make([]string, len(participants))
	nodes := make([]Node, len(participants))
	for i := range participants {
		names[i] = participants[i].Agent.Name
		nodes[i] = newNode(participants[i], scenario.CoordinatorName)
	}

	coord := newNode(coordinator, scenario.CoordinatorName)
	coord.DependsOn = names

	aggDeps := make([]string, 0, len(names)+1)
	aggDeps = append(aggDeps, scenario.CoordinatorName)
	aggDeps = append(aggDeps, names...)

	return &Topology{
		Coordinator:         coord,
		Participants:        nodes,
		Config:              maps.Clone(config),
		AggregatorDependsOn: aggDeps,
	}, nil
}

func newNode(r Resolved, coordinatorName string) Node {
	name := r.Agent.Name
	if r.Agent.Role == scenario.RoleCoordinator {
		name = coordinatorName
	}

	base := endpoint.BasePath(r.Agent.Alias, r.Agent.Env)
	n := Node{
		Name:        name,
		Role:        r.Agent.Role,
		Image:       r.Image,
		BasePath:    base,
		HealthPath:  endpoint.HealthPath(base),
		Port:        Port,
		declaredEnv: maps.Clone(r.Agent.Env),
	}
	if id, ok := r.Agent.CatalogID(); ok {
		n.CatalogID = id
	}

	env := maps.Clone(defaultEnv)
	maps.Copy(env, r.Agent.Env)
	env[endpoint.CardURLEnv] = n.Address()
	n.env = env

	return n
}
