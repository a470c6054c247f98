// Package endpoint derives where an agent serves the A2A protocol.
package endpoint

import (
	"net/url"
	"strings"

	"github.com/a2aproject/a2a-go/a2asrv"
)

// CardURLEnv is the environment variable an agent uses to announce its own
// address. Runtimes that mount the protocol under a sub-path report it here.
const CardURLEnv = "CARD_URL"

// aliasPrefix is the mount point used by runtimes that serve agents by name.
const aliasPrefix = "/a2a/"

// BasePath returns the URL path prefix under which the agent's protocol
// handlers are mounted. Precedence: explicit alias, then the path of a
// fully-formed CARD_URL in env, then the network root ("").
func BasePath(alias string, env map[string]string) string {
	if alias != "" {
		return aliasPrefix + alias
	}
	if p := pathFromCardURL(env[CardURLEnv]); p != "" {
		return p
	}
	return ""
}

// HealthPath is the well-known agent card location beneath basePath.
func HealthPath(basePath string) string {
	return basePath + a2asrv.WellKnownAgentCardPath
}

// pathFromCardURL extracts the path of raw with any trailing slash removed.
// Unresolved placeholders and values that are not absolute URLs yield "".
func pathFromCardURL(raw string) string {
	if raw == "" || strings.HasPrefix(raw, "${") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}
