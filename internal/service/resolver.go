package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Strob0t/scenariogen/internal/adapter/otel"
	"github.com/Strob0t/scenariogen/internal/domain/scenario"
	"github.com/Strob0t/scenariogen/internal/logger"
	"github.com/Strob0t/scenariogen/internal/port/catalog"
)

// restrictedReason is reported when a direct image is used where only
// catalog-resolved agents are allowed.
const restrictedReason = "requires 'agentbeats_id' for GitHub Actions (use 'image' for local testing only)"

// ImageResolver turns an agent's declared identity into a concrete image.
type ImageResolver struct {
	lookup     catalog.Lookup
	restricted bool
	metrics    *otel.Metrics
}

// NewImageResolver creates a resolver. In restricted mode direct image
// references are rejected.
func NewImageResolver(lookup catalog.Lookup, restricted bool) *ImageResolver {
	return &ImageResolver{lookup: lookup, restricted: restricted}
}

// SetMetrics attaches metric instruments for catalog lookups.
func (r *ImageResolver) SetMetrics(m *otel.Metrics) {
	r.metrics = m
}

// Check reports the identity and policy violations Resolve would return for
// a, without contacting the catalog.
func (r *ImageResolver) Check(a scenario.Agent) error {
	switch a.Identity.(type) {
	case scenario.DirectImage:
		if r.restricted {
			return &scenario.ConfigError{Agent: a.Label(), Field: "image", Reason: restrictedReason}
		}
		return nil
	case scenario.CatalogID:
		return nil
	default:
		return &scenario.ConfigError{
			Agent:  a.Label(),
			Field:  "image",
			Reason: "must have either 'image' or 'agentbeats_id' field",
		}
	}
}

// Resolve returns the image reference for a. Identity and policy violations
// yield *scenario.ConfigError; lookup failures yield *scenario.ResolutionError.
func (r *ImageResolver) Resolve(ctx context.Context, a scenario.Agent) (string, error) {
	if err := r.Check(a); err != nil {
		return "", err
	}
	switch id := a.Identity.(type) {
	case scenario.DirectImage:
		slog.InfoContext(ctx, "using image",
			"compile_id", logger.CompileID(ctx), "agent", a.Label(), "image", id.Ref)
		return id.Ref, nil
	case scenario.CatalogID:
		return r.resolveCatalog(ctx, a, id.ID)
	}
	return "", nil
}

func (r *ImageResolver) resolveCatalog(ctx context.Context, a scenario.Agent, id string) (string, error) {
	ctx, span := otel.StartLookupSpan(ctx, a.Label(), id)
	start := time.Now()

	info, err := r.lookup.Lookup(ctx, id)

	r.recordLookup(ctx, time.Since(start), err)
	otel.EndSpan(span, err)

	if err != nil {
		slog.ErrorContext(ctx, "image resolution failed",
			"compile_id", logger.CompileID(ctx), "agent", a.Label(), "agentbeats_id", id, "error", err)
		return "", &scenario.ResolutionError{Agent: a.Label(), CatalogID: id, Err: err}
	}

	slog.InfoContext(ctx, "resolved image",
		"compile_id", logger.CompileID(ctx), "agent", a.Label(), "agentbeats_id", id, "image", info.DockerImage)
	return info.DockerImage, nil
}

func (r *ImageResolver) recordLookup(ctx context.Context, d time.Duration, err error) {
	if r.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	r.metrics.Lookups.Add(ctx, 1, attrs)
	r.metrics.LookupDuration.Record(ctx, d.Seconds(), attrs)
}
