package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/scenariogen/internal/adapter/a2ascenario"
	"github.com/Strob0t/scenariogen/internal/adapter/compose"
	"github.com/Strob0t/scenariogen/internal/domain"
	"github.com/Strob0t/scenariogen/internal/domain/scenario"
	"github.com/Strob0t/scenariogen/internal/port/artifact"
	"github.com/Strob0t/scenariogen/internal/port/catalog"
	"github.com/Strob0t/scenariogen/internal/port/messagequeue"
	"github.com/Strob0t/scenariogen/internal/secrets"
	"github.com/Strob0t/scenariogen/internal/service"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	data     [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.data = append(p.data, data)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type memWriter struct {
	set artifact.Set
	err error
}

func (w *memWriter) Write(_ context.Context, set artifact.Set) error {
	w.set = set
	return w.err
}

func sampleScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Coordinator: scenario.Agent{
			Name:     scenario.CoordinatorName,
			Role:     scenario.RoleCoordinator,
			Identity: scenario.CatalogID{ID: "green-1"},
			Alias:    "evaluator",
			Env:      map[string]string{"OPENAI_API_KEY": "${OPENAI_API_KEY}"},
		},
		Participants: []scenario.Agent{
			{
				Name:     "agent",
				Role:     scenario.RoleParticipant,
				Identity: scenario.DirectImage{Ref: "agent:local"},
				Env:      map[string]string{"TOKEN": "${API_TOKEN}", "OTHER": "${API_TOKEN}-${SECOND}"},
			},
			{
				Name:     "judge",
				Role:     scenario.RoleParticipant,
				Identity: scenario.CatalogID{ID: "judge-1"},
			},
		},
		Config: map[string]any{"domain": "airline"},
	}
}

func newCompiler(cat catalog.Lookup, restricted bool) *service.CompilerService {
	c := service.NewCompilerService(service.NewImageResolver(cat, restricted), compose.DefaultOptions(), 4)
	c.SetSecretsLoader(func(...string) secrets.Loader {
		return func() (map[string]string, error) { return map[string]string{"API_TOKEN": "set"}, nil }
	})
	return c
}

func defaultCatalog() *fakeCatalog {
	return &fakeCatalog{images: map[string]string{
		"green-1": "ghcr.io/x/green:v1",
		"judge-1": "ghcr.io/x/judge:v1",
	}}
}

func TestCompile(t *testing.T) {
	pub := &recordingPublisher{}
	c := newCompiler(defaultCatalog(), false)
	c.SetPublisher(pub, "")

	out, err := c.Compile(context.Background(), sampleScenario())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if out.ID == "" {
		t.Fatal("expected compile id")
	}

	topo := out.Topology
	if topo.Coordinator.Image != "ghcr.io/x/green:v1" || topo.Participants[1].Image != "ghcr.io/x/judge:v1" {
		t.Fatalf("unexpected images: %s %s", topo.Coordinator.Image, topo.Participants[1].Image)
	}
	if topo.Coordinator.BasePath != "/a2a/evaluator" {
		t.Fatalf("unexpected base path %q", topo.Coordinator.BasePath)
	}

	if got := string(out.Artifacts.Env); got != "API_TOKEN=\nOPENAI_API_KEY=\nSECOND=\n" {
		t.Fatalf("unexpected env manifest %q", got)
	}
	if strings.Join(out.Missing, ",") != "OPENAI_API_KEY,SECOND" {
		t.Fatalf("unexpected missing list %v", out.Missing)
	}

	m, err := a2ascenario.Parse(out.Artifacts.Scenario)
	if err != nil {
		t.Fatalf("parse routing manifest: %v", err)
	}
	if m.GreenAgent.Endpoint != "http://green-agent:9009/a2a/evaluator" {
		t.Fatalf("unexpected coordinator endpoint %s", m.GreenAgent.Endpoint)
	}
	if len(m.Participants) != 2 || m.Participants[1].AgentbeatsID != "judge-1" {
		t.Fatalf("unexpected participants %+v", m.Participants)
	}

	if !strings.Contains(string(out.Artifacts.Compose), "pull_policy: never") {
		t.Fatal("expected local image to be marked never-pull")
	}

	if len(pub.subjects) != 1 || pub.subjects[0] != messagequeue.SubjectScenarioCompiled {
		t.Fatalf("expected one compiled event, got %v", pub.subjects)
	}
	var ev messagequeue.ScenarioCompiledPayload
	if err := json.Unmarshal(pub.data[0], &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.CompileID != out.ID {
		t.Fatalf("event compile id %s != %s", ev.CompileID, out.ID)
	}
	if strings.Join(ev.Services, ",") != "green-agent,agent,judge,agentbeats-client" {
		t.Fatalf("unexpected services %v", ev.Services)
	}
}

func TestCompileNoSecrets(t *testing.T) {
	sc := sampleScenario()
	sc.Coordinator.Env = nil
	sc.Participants[0].Env = map[string]string{"PLAIN": "value"}

	out, err := newCompiler(defaultCatalog(), false).Compile(context.Background(), sc)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if out.Artifacts.Env != nil {
		t.Fatalf("expected no env manifest, got %q", out.Artifacts.Env)
	}
}

func TestCompileFirstErrorInDeclarationOrder(t *testing.T) {
	cat := &fakeCatalog{images: map[string]string{}}
	sc := sampleScenario()

	_, err := newCompiler(cat, false).Compile(context.Background(), sc)
	var resErr *scenario.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if resErr.Agent != "green_agent" {
		t.Fatalf("expected coordinator failure first, got %s", resErr.Agent)
	}

	cat.images["green-1"] = "ghcr.io/x/green:v1"
	_, err = newCompiler(cat, false).Compile(context.Background(), sc)
	if !errors.As(err, &resErr) || resErr.Agent != "participant 'judge'" {
		t.Fatalf("expected judge failure, got %v", err)
	}
}

func TestCompileRestrictedRejectsDirectImage(t *testing.T) {
	_, err := newCompiler(defaultCatalog(), true).Compile(context.Background(), sampleScenario())
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "participant 'agent'") {
		t.Fatalf("expected offending agent in %q", err.Error())
	}
}

// blockingCatalog fails ids listed in fail at once and holds every other
// lookup until its context is cancelled.
type blockingCatalog struct {
	mu        sync.Mutex
	fail      map[string]error
	calls     []string
	cancelled int
}

func (b *blockingCatalog) Lookup(ctx context.Context, id string) (catalog.Agent, error) {
	b.mu.Lock()
	b.calls = append(b.calls, id)
	err, ok := b.fail[id]
	b.mu.Unlock()
	if ok {
		return catalog.Agent{}, err
	}

	select {
	case <-ctx.Done():
		b.mu.Lock()
		b.cancelled++
		b.mu.Unlock()
		return catalog.Agent{}, ctx.Err()
	case <-time.After(5 * time.Second):
		return catalog.Agent{ID: id, DockerImage: "late:v1"}, nil
	}
}

func TestCompileRestrictedSkipsCatalog(t *testing.T) {
	cat := &blockingCatalog{}
	sc := sampleScenario()
	sc.Coordinator.Identity = scenario.DirectImage{Ref: "green:local"}

	start := time.Now()
	_, err := newCompiler(cat, true).Compile(context.Background(), sc)
	var cfgErr *scenario.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Agent != "green_agent" {
		t.Fatalf("expected coordinator ConfigError, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("policy rejection took %s", elapsed)
	}
	if len(cat.calls) != 0 {
		t.Fatalf("no lookups expected, got %v", cat.calls)
	}
}

func TestCompileCancelsLookupsAfterFirstError(t *testing.T) {
	cat := &blockingCatalog{fail: map[string]error{"green-1": catalog.ErrNotFound}}

	start := time.Now()
	_, err := newCompiler(cat, false).Compile(context.Background(), sampleScenario())
	var resErr *scenario.ResolutionError
	if !errors.As(err, &resErr) || resErr.Agent != "green_agent" {
		t.Fatalf("expected coordinator ResolutionError, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("expected early return, took %s", elapsed)
	}
}

func TestCompileWaitsForEarlierLookups(t *testing.T) {
	cat := &blockingCatalog{fail: map[string]error{"judge-1": catalog.ErrNotFound}}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := newCompiler(cat, false).Compile(ctx, sampleScenario())
	var resErr *scenario.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if resErr.Agent != "green_agent" || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("a later failure must not preempt a pending earlier lookup, got %v", err)
	}
}

func TestCompileDuplicatesBeforeLookup(t *testing.T) {
	cat := defaultCatalog()
	sc := sampleScenario()
	sc.Participants[0].Name = "judge"

	_, err := newCompiler(cat, false).Compile(context.Background(), sc)
	var cfgErr *scenario.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if len(cfgErr.Duplicates) != 1 || cfgErr.Duplicates[0] != "judge" {
		t.Fatalf("expected judge listed once, got %v", cfgErr.Duplicates)
	}
	if len(cat.calls) != 0 {
		t.Fatalf("no lookups expected, got %v", cat.calls)
	}
}

func TestCompilePublishFailureIsNotFatal(t *testing.T) {
	c := newCompiler(defaultCatalog(), false)
	c.SetPublisher(&recordingPublisher{err: errors.New("broker down")}, "")

	if _, err := c.Compile(context.Background(), sampleScenario()); err != nil {
		t.Fatalf("publish failure must not fail compilation: %v", err)
	}
}

func TestGenerate(t *testing.T) {
	w := &memWriter{}
	out, err := newCompiler(defaultCatalog(), false).Generate(context.Background(), sampleScenario(), w)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(w.set.Compose) != string(out.Artifacts.Compose) {
		t.Fatal("writer did not receive the compiled artifacts")
	}

	w = &memWriter{err: errors.New("disk full")}
	if _, err := newCompiler(defaultCatalog(), false).Generate(context.Background(), sampleScenario(), w); err == nil {
		t.Fatal("expected write error")
	}
}
