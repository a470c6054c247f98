package a2ascenario_test

import (
	"strings"
	"testing"

	"github.com/Strob0t/scenariogen/internal/adapter/a2ascenario"
	"github.com/Strob0t/scenariogen/internal/domain/scenario"
	"github.com/Strob0t/scenariogen/internal/domain/topology"
)

func buildTopology(t *testing.T, config map[string]any) *topology.Topology {
	t.Helper()
	coord := topology.Resolved{
		Agent: scenario.Agent{
			Name:     scenario.CoordinatorName,
			Role:     scenario.RoleCoordinator,
			Identity: scenario.CatalogID{ID: "green-id"},
			Alias:    "evaluator",
		},
		Image: "ghcr.io/org/green:v1",
	}
	parts := []topology.Resolved{
		{
			Agent: scenario.Agent{Name: "agent", Role: scenario.RoleParticipant, Identity: scenario.CatalogID{ID: "cat-1"}},
			Image: "ghcr.io/org/agent:v1",
		},
		{
			Agent: scenario.Agent{
				Name:     "user",
				Role:     scenario.RoleParticipant,
				Identity: scenario.DirectImage{Ref: "user:local"},
				Env:      map[string]string{"CARD_URL": "http://user:9009/a2a/user/"},
			},
			Image: "user:local",
		},
	}
	top, err := topology.Build(coord, parts, config)
	if err != nil {
		t.Fatal(err)
	}
	return top
}

func TestRenderRoundTrip(t *testing.T) {
	top := buildTopology(t, map[string]any{
		"domain":    "airline",
		"num_tasks": int64(5),
		"user_llm":  map[string]any{"model": "gpt-4o", "temperature": 0.2},
	})

	out, err := a2ascenario.Render(top)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	m, err := a2ascenario.Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v\n%s", err, out)
	}

	if m.GreenAgent.Endpoint != "http://green-agent:9009/a2a/evaluator" {
		t.Errorf("coordinator endpoint = %q", m.GreenAgent.Endpoint)
	}

	want := map[string]string{}
	for i := range top.Participants {
		want[top.Participants[i].Name] = top.Participants[i].Endpoint()
	}
	if len(m.Participants) != len(want) {
		t.Fatalf("expected %d participants, got %d", len(want), len(m.Participants))
	}
	for _, p := range m.Participants {
		if want[p.Role] != p.Endpoint {
			t.Errorf("participant %s endpoint = %q, want %q", p.Role, p.Endpoint, want[p.Role])
		}
	}
	if m.Participants[0].Endpoint != "http://agent:9009" || m.Participants[1].Endpoint != "http://user:9009/a2a/user" {
		t.Errorf("unexpected endpoints %+v", m.Participants)
	}

	if m.Participants[0].AgentbeatsID != "cat-1" {
		t.Errorf("catalog participant should carry its id, got %q", m.Participants[0].AgentbeatsID)
	}
	if m.Participants[1].AgentbeatsID != "" {
		t.Errorf("direct-image participant should have no id, got %q", m.Participants[1].AgentbeatsID)
	}
	if strings.Count(string(out), "agentbeats_id") != 1 {
		t.Errorf("agentbeats_id should appear once:\n%s", out)
	}

	if m.Config["domain"] != "airline" || m.Config["num_tasks"] != int64(5) {
		t.Errorf("config = %v", m.Config)
	}
	llm, ok := m.Config["user_llm"].(map[string]any)
	if !ok || llm["model"] != "gpt-4o" || llm["temperature"] != 0.2 {
		t.Errorf("nested config = %v", m.Config["user_llm"])
	}
}

func TestRenderOrder(t *testing.T) {
	out, err := a2ascenario.Render(buildTopology(t, nil))
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	green := strings.Index(s, "[green_agent]")
	parts := strings.Index(s, "[[participants]]")
	config := strings.Index(s, "[config]")
	if green < 0 || parts < green || config < parts {
		t.Fatalf("unexpected section order:\n%s", s)
	}
}

func TestRenderNoParticipants(t *testing.T) {
	coord := topology.Resolved{
		Agent: scenario.Agent{Name: scenario.CoordinatorName, Role: scenario.RoleCoordinator, Identity: scenario.DirectImage{Ref: "g:v1"}},
		Image: "g:v1",
	}
	top, err := topology.Build(coord, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := a2ascenario.Render(top)
	if err != nil {
		t.Fatal(err)
	}
	m, err := a2ascenario.Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Participants) != 0 {
		t.Errorf("expected no participants, got %v", m.Participants)
	}
	if m.GreenAgent.Endpoint != "http://green-agent:9009" {
		t.Errorf("endpoint = %q", m.GreenAgent.Endpoint)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := a2ascenario.Parse([]byte("[green_agent\nendpoint=")); err == nil {
		t.Fatal("expected parse error")
	}
}
