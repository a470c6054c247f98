// Package service implements the scenario compilation use cases.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Strob0t/scenariogen/internal/adapter/a2ascenario"
	"github.com/Strob0t/scenariogen/internal/adapter/compose"
	"github.com/Strob0t/scenariogen/internal/adapter/dotenv"
	"github.com/Strob0t/scenariogen/internal/adapter/otel"
	"github.com/Strob0t/scenariogen/internal/domain/scenario"
	"github.com/Strob0t/scenariogen/internal/domain/topology"
	"github.com/Strob0t/scenariogen/internal/logger"
	"github.com/Strob0t/scenariogen/internal/port/artifact"
	"github.com/Strob0t/scenariogen/internal/port/messagequeue"
	"github.com/Strob0t/scenariogen/internal/secrets"
)

// Compilation is the outcome of compiling one scenario.
type Compilation struct {
	ID        string
	Topology  *topology.Topology
	Artifacts artifact.Set
	Secrets   []string // placeholder names, sorted
	Missing   []string // placeholders with no value in the environment
}

// CompilerService validates, resolves and renders scenarios.
type CompilerService struct {
	resolver    *ImageResolver
	opts        compose.Options
	maxParallel int

	publisher messagequeue.Publisher
	subject   string
	metrics   *otel.Metrics
	loader    func(names ...string) secrets.Loader
	newID     func() string
}

// NewCompilerService creates a CompilerService resolving at most maxParallel
// catalog ids concurrently.
func NewCompilerService(resolver *ImageResolver, opts compose.Options, maxParallel int) *CompilerService {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &CompilerService{
		resolver:    resolver,
		opts:        opts,
		maxParallel: maxParallel,
		publisher:   messagequeue.Nop{},
		subject:     messagequeue.SubjectScenarioCompiled,
		loader:      secrets.EnvLoader,
		newID:       uuid.NewString,
	}
}

// SetPublisher attaches a compile event publisher.
func (s *CompilerService) SetPublisher(p messagequeue.Publisher, subject string) {
	s.publisher = p
	if subject != "" {
		s.subject = subject
	}
}

// SetMetrics attaches metric instruments.
func (s *CompilerService) SetMetrics(m *otel.Metrics) {
	s.metrics = m
}

// SetSecretsLoader replaces the source used to check placeholder values.
func (s *CompilerService) SetSecretsLoader(fn func(names ...string) secrets.Loader) {
	s.loader = fn
}

// Compile runs validation, image resolution, topology construction and
// rendering. It never returns partial artifacts.
func (s *CompilerService) Compile(ctx context.Context, sc *scenario.Scenario) (*Compilation, error) {
	id := s.newID()
	ctx = logger.WithCompileID(ctx, id)
	ctx, span := otel.StartCompileSpan(ctx, id, len(sc.Participants))

	c, err := s.compile(ctx, id, sc)
	otel.EndSpan(span, err)

	if s.metrics != nil {
		if err != nil {
			s.metrics.CompileFailed.Add(ctx, 1)
		} else {
			s.metrics.Compilations.Add(ctx, 1)
		}
	}
	if err != nil {
		slog.ErrorContext(ctx, "compilation failed", "compile_id", id, "error", err)
		return nil, err
	}

	s.publish(ctx, c)
	return c, nil
}

// Generate compiles sc and persists the artifacts with w.
func (s *CompilerService) Generate(ctx context.Context, sc *scenario.Scenario, w artifact.Writer) (*Compilation, error) {
	c, err := s.Compile(ctx, sc)
	if err != nil {
		return nil, err
	}
	if err := w.Write(ctx, c.Artifacts); err != nil {
		return nil, fmt.Errorf("write artifacts: %w", err)
	}
	return c, nil
}

func (s *CompilerService) compile(ctx context.Context, id string, sc *scenario.Scenario) (*Compilation, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	images, err := s.resolveAll(ctx, sc.Agents())
	if err != nil {
		return nil, err
	}

	coordinator := topology.Resolved{Agent: sc.Coordinator, Image: images[0]}
	participants := make([]topology.Resolved, len(sc.Participants))
	for i, p := range sc.Participants {
		participants[i] = topology.Resolved{Agent: p, Image: images[i+1]}
	}

	topo, err := topology.Build(coordinator, participants, sc.Config)
	if err != nil {
		return nil, err
	}

	composeText, err := compose.Render(topo, s.opts)
	if err != nil {
		return nil, fmt.Errorf("render compose: %w", err)
	}
	scenarioText, err := a2ascenario.Render(topo)
	if err != nil {
		return nil, fmt.Errorf("render routing manifest: %w", err)
	}

	c := &Compilation{
		ID:       id,
		Topology: topo,
		Artifacts: artifact.Set{
			Compose:  composeText,
			Scenario: scenarioText,
			Env:      dotenv.Render(topo),
		},
		Secrets: dotenv.Names(topo),
	}

	if len(c.Secrets) > 0 {
		missing, err := secrets.Missing(c.Secrets, s.loader(c.Secrets...))
		if err != nil {
			slog.WarnContext(ctx, "secrets check failed", "compile_id", id, "error", err)
		} else if len(missing) > 0 {
			c.Missing = missing
			slog.WarnContext(ctx, "placeholders without a value in the environment",
				"compile_id", id, "missing", missing)
		}
	}

	slog.InfoContext(ctx, "scenario compiled",
		"compile_id", id, "participants", len(topo.Participants), "secrets", len(c.Secrets))
	return c, nil
}

// errSettled cancels outstanding lookups once the reported error is known.
var errSettled = errors.New("resolution settled")

// resolveAll resolves every agent's image. Identity and policy checks run
// first for all agents, so a rejected scenario never reaches the catalog.
// Lookups then run concurrently; the reported error is the first one in
// declaration order, and outstanding lookups are cancelled as soon as no
// earlier agent can still change it.
func (s *CompilerService) resolveAll(ctx context.Context, agents []scenario.Agent) ([]string, error) {
	for _, a := range agents {
		if err := s.resolver.Check(a); err != nil {
			return nil, err
		}
	}

	images := make([]string, len(agents))
	errs := make([]error, len(agents))
	done := make([]bool, len(agents))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i := range agents {
		g.Go(func() error {
			var (
				image string
				err   error
			)
			if err = gctx.Err(); err == nil {
				image, err = s.resolver.Resolve(gctx, agents[i])
			}

			mu.Lock()
			defer mu.Unlock()
			images[i], errs[i], done[i] = image, err, true
			if firstSettledError(errs, done) != nil {
				return errSettled
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := firstSettledError(errs, done); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

// firstSettledError returns the error of the first agent in declaration
// order, provided every agent before it has finished without error.
func firstSettledError(errs []error, done []bool) error {
	for i := range errs {
		if !done[i] {
			return nil
		}
		if errs[i] != nil {
			return errs[i]
		}
	}
	return nil
}

func (s *CompilerService) publish(ctx context.Context, c *Compilation) {
	nodes := c.Topology.Nodes()
	services := make([]string, 0, len(nodes)+1)
	for _, n := range nodes {
		services = append(services, n.Name)
	}
	services = append(services, scenario.AggregatorName)

	participants := make([]string, 0, len(c.Topology.Participants))
	for i := range c.Topology.Participants {
		participants = append(participants, c.Topology.Participants[i].Name)
	}

	payload := messagequeue.ScenarioCompiledPayload{
		CompileID:    c.ID,
		Services:     services,
		Participants: participants,
		Secrets:      c.Secrets,
	}
	if payload.Secrets == nil {
		payload.Secrets = []string{}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.WarnContext(ctx, "compile event encode failed", "compile_id", c.ID, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, s.subject, data); err != nil {
		slog.WarnContext(ctx, "compile event publish failed", "compile_id", c.ID, "error", err)
	}
}
