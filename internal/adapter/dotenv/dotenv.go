// Package dotenv renders the secrets placeholder manifest (.env.example).
package dotenv

import (
	"strings"

	"github.com/Strob0t/scenariogen/internal/domain/topology"
	"github.com/Strob0t/scenariogen/internal/secrets"
)

// Names returns the sorted, distinct placeholder names referenced by any
// agent's declared environment. Injected values are not scanned.
func Names(t *topology.Topology) []string {
	var values []string
	for _, n := range t.Nodes() {
		for _, v := range n.DeclaredEnv() {
			values = append(values, v)
		}
	}
	return secrets.Placeholders(values...)
}

// Render returns one "NAME=" line per placeholder, or nil when there are none.
func Render(t *topology.Topology) []byte {
	names := Names(t)
	if len(names) == 0 {
		return nil
	}
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteString("=\n")
	}
	return []byte(b.String())
}
