// Package catalog defines the port for resolving catalog ids into agent images.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Strob0t/scenariogen/internal/domain"
)

// Lookup failure classes. Adapters wrap one of these so callers can tell
// them apart with errors.Is.
var (
	ErrNotFound  = fmt.Errorf("catalog agent %w", domain.ErrNotFound)
	ErrInvalid   = errors.New("invalid catalog response")
	ErrTransport = errors.New("catalog transport failure")
)

// Agent is the subset of catalog metadata the compiler needs.
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	DockerImage string `json:"docker_image"`
}

// Lookup resolves a catalog id. Implementations must be idempotent and
// read-only, and must bound each call with a network timeout.
type Lookup interface {
	Lookup(ctx context.Context, id string) (Agent, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, id string) (Agent, error)

// Lookup calls f.
func (f LookupFunc) Lookup(ctx context.Context, id string) (Agent, error) {
	return f(ctx, id)
}
