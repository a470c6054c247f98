// Package ristretto memoizes catalog lookups in an in-process dgraph-io/ristretto cache.
package ristretto

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/Strob0t/scenariogen/internal/port/catalog"
)

// Catalog wraps a catalog.Lookup and caches successful results.
// Failures are never cached, so a retried compilation always re-queries.
type Catalog struct {
	next catalog.Lookup
	c    *ristretto.Cache[string, catalog.Agent]
	ttl  time.Duration
}

var _ catalog.Lookup = (*Catalog)(nil)

// New creates a caching lookup holding at most maxEntries agents for ttl.
func New(next catalog.Lookup, maxEntries int64, ttl time.Duration) (*Catalog, error) {
	if maxEntries < 1 {
		maxEntries = 1
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, catalog.Agent]{
		NumCounters: maxEntries * 10, // ~10x expected items
		MaxCost:     maxEntries,
		BufferItems: 64,
		// Cost counts entries, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Catalog{next: next, c: c, ttl: ttl}, nil
}

// Lookup returns the cached agent for id or delegates and caches the result.
func (c *Catalog) Lookup(ctx context.Context, id string) (catalog.Agent, error) {
	if agent, ok := c.c.Get(id); ok {
		slog.Debug("catalog cache hit", "agentbeats_id", id)
		return agent, nil
	}

	agent, err := c.next.Lookup(ctx, id)
	if err != nil {
		return agent, err
	}

	c.c.SetWithTTL(id, agent, 1, c.ttl)
	c.c.Wait()
	return agent, nil
}

// Close shuts down the cache and releases resources.
func (c *Catalog) Close() {
	c.c.Close()
}
