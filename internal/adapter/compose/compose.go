// Package compose renders a resolved topology as a Docker Compose file.
package compose

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Strob0t/scenariogen/internal/domain/scenario"
	"github.com/Strob0t/scenariogen/internal/domain/topology"
)

// Health probe policy shared by every agent service.
const (
	HealthInterval    = "5s"
	HealthTimeout     = "3s"
	HealthRetries     = 10
	HealthStartPeriod = "30s"
)

// Fixed names and images of the generated deployment.
const (
	NetworkName      = "agent-network"
	ScenarioConfig   = "scenario"
	AggregatorImage  = "ghcr.io/agentbeats/agentbeats-client:v1.0.0"
	RemotePlatform   = "linux/amd64"
	PullNever        = "never"
	ConditionHealthy = "service_healthy"
)

const header = "# Auto-generated from scenario.toml\n\n"

// File is the subset of the Compose specification this package emits.
type File struct {
	Services yaml.Node               `yaml:"services"`
	Configs  map[string]ConfigSource `yaml:"configs"`
	Networks map[string]Network      `yaml:"networks"`
}

// Service is one container definition.
type Service struct {
	Image         string                `yaml:"image"`
	PullPolicy    string                `yaml:"pull_policy,omitempty"`
	Platform      string                `yaml:"platform,omitempty"`
	ContainerName string                `yaml:"container_name"`
	Configs       []ConfigMount         `yaml:"configs,omitempty"`
	Volumes       []string              `yaml:"volumes,omitempty"`
	Command       []string              `yaml:"command,flow"`
	EnvFile       []string              `yaml:"env_file,omitempty"`
	Environment   map[string]string     `yaml:"environment,omitempty"`
	Healthcheck   *Healthcheck          `yaml:"healthcheck,omitempty"`
	DependsOn     map[string]Dependency `yaml:"depends_on,omitempty"`
	Networks      []string              `yaml:"networks"`
}

// Healthcheck is a container health probe.
type Healthcheck struct {
	Test        []string `yaml:"test,flow"`
	Interval    string   `yaml:"interval"`
	Timeout     string   `yaml:"timeout"`
	Retries     int      `yaml:"retries"`
	StartPeriod string   `yaml:"start_period"`
}

// Dependency is a depends_on entry.
type Dependency struct {
	Condition string `yaml:"condition"`
}

// ConfigMount mounts a top-level config into a service.
type ConfigMount struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// ConfigSource declares a top-level config backed by a file.
type ConfigSource struct {
	File string `yaml:"file"`
}

// Network declares a top-level network.
type Network struct {
	Driver string `yaml:"driver"`
}

// Options controls file locations referenced by the compose file.
type Options struct {
	ScenarioFile string // routing manifest path relative to the compose file
	OutputDir    string // host directory receiving results
}

// DefaultOptions matches the file names written by the generate command.
func DefaultOptions() Options {
	return Options{ScenarioFile: "a2a-scenario.toml", OutputDir: "output"}
}

// Render produces the compose document for t. Services appear in order:
// coordinator, participants in declaration order, aggregator.
func Render(t *topology.Topology, opts Options) ([]byte, error) {
	services := yaml.Node{Kind: yaml.MappingNode}

	coord := agentService(&t.Coordinator)
	coord.EnvFile = []string{".env"}
	coord.DependsOn = healthyDeps(t.Coordinator.DependsOn)
	if err := appendService(&services, t.Coordinator.Name, coord); err != nil {
		return nil, err
	}

	for i := range t.Participants {
		p := &t.Participants[i]
		if err := appendService(&services, p.Name, agentService(p)); err != nil {
			return nil, err
		}
	}

	if err := appendService(&services, scenario.AggregatorName, aggregatorService(t, opts)); err != nil {
		return nil, err
	}

	doc := File{
		Services: services,
		Configs:  map[string]ConfigSource{ScenarioConfig: {File: hostPath(opts.ScenarioFile)}},
		Networks: map[string]Network{NetworkName: {Driver: "bridge"}},
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode compose: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode compose: %w", err)
	}
	return buf.Bytes(), nil
}

func agentService(n *topology.Node) Service {
	port := strconv.Itoa(n.Port)
	svc := Service{
		Image:         n.Image,
		ContainerName: n.Name,
		Command:       []string{"--host", "0.0.0.0", "--port", port},
		Environment:   n.Env(),
		Healthcheck: &Healthcheck{
			Test:        []string{"CMD", "curl", "-f", "http://localhost:" + port + n.HealthPath},
			Interval:    HealthInterval,
			Timeout:     HealthTimeout,
			Retries:     HealthRetries,
			StartPeriod: HealthStartPeriod,
		},
		Networks: []string{NetworkName},
	}
	setPullPolicy(&svc, n.LocalOnly())
	return svc
}

func aggregatorService(t *topology.Topology, opts Options) Service {
	return Service{
		Image:         AggregatorImage,
		Platform:      RemotePlatform,
		ContainerName: scenario.AggregatorName,
		Configs:       []ConfigMount{{Source: ScenarioConfig, Target: "/app/scenario.toml"}},
		Volumes:       []string{hostPath(opts.OutputDir) + ":/app/output"},
		Command:       []string{"scenario.toml", "output/results.json"},
		DependsOn:     healthyDeps(t.AggregatorDependsOn),
		Networks:      []string{NetworkName},
	}
}

// setPullPolicy keeps local-only images from being pulled and pins every
// other image to a fixed platform.
func setPullPolicy(svc *Service, localOnly bool) {
	if localOnly {
		svc.PullPolicy = PullNever
		return
	}
	svc.Platform = RemotePlatform
}

func healthyDeps(names []string) map[string]Dependency {
	if len(names) == 0 {
		return nil
	}
	deps := make(map[string]Dependency, len(names))
	for _, n := range names {
		deps[n] = Dependency{Condition: ConditionHealthy}
	}
	return deps
}

func appendService(m *yaml.Node, name string, svc Service) error {
	var val yaml.Node
	if err := val.Encode(svc); err != nil {
		return fmt.Errorf("encode service %s: %w", name, err)
	}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, &val)
	return nil
}

// hostPath makes p relative to the compose file unless it is absolute.
func hostPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return "./" + p
}
