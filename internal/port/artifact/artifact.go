// Package artifact defines the port for persisting generated artifacts.
package artifact

import "context"

// Set is the rendered output of one compilation.
type Set struct {
	Compose  []byte // orchestration manifest
	Scenario []byte // routing manifest
	Env      []byte // secrets placeholder manifest; nil when there are no placeholders
}

// Writer persists an artifact Set.
type Writer interface {
	Write(ctx context.Context, set Set) error
}
