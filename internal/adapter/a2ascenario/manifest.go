// Package a2ascenario renders and parses the routing manifest consumed by the
// results aggregator: the coordinator endpoint, participant endpoints and the
// scenario's pass-through config.
package a2ascenario

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/Strob0t/scenariogen/internal/domain/topology"
)

// Manifest is the routing manifest document.
type Manifest struct {
	GreenAgent   Coordinator    `toml:"green_agent"`
	Participants []Participant  `toml:"participants,omitempty"`
	Config       map[string]any `toml:"config"`
}

// Coordinator is the coordinator's endpoint block.
type Coordinator struct {
	Endpoint string `toml:"endpoint"`
}

// Participant is one participant endpoint block.
type Participant struct {
	Role         string `toml:"role"`
	Endpoint     string `toml:"endpoint"`
	AgentbeatsID string `toml:"agentbeats_id,omitempty"`
}

// FromTopology builds the manifest for t.
func FromTopology(t *topology.Topology) Manifest {
	m := Manifest{
		GreenAgent: Coordinator{Endpoint: t.Coordinator.Endpoint()},
		Config:     t.Config,
	}
	if m.Config == nil {
		m.Config = map[string]any{}
	}
	for i := range t.Participants {
		p := &t.Participants[i]
		m.Participants = append(m.Participants, Participant{
			Role:         p.Name,
			Endpoint:     p.Endpoint(),
			AgentbeatsID: p.CatalogID,
		})
	}
	return m
}

// Render serializes the manifest for t as TOML.
func Render(t *topology.Topology) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(FromTopology(t)); err != nil {
		return nil, fmt.Errorf("encode routing manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse reads a routing manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse routing manifest: %w", err)
	}
	return &m, nil
}
