// Package secrets finds unresolved ${NAME} placeholders and checks which of
// them the current environment can satisfy.
package secrets

import (
	"fmt"
	"regexp"
	"slices"
)

// placeholder matches ${NAME}; the capture is NAME.
var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Loader retrieves secret values from a source such as the process environment.
type Loader func() (map[string]string, error)

// Placeholders returns the distinct placeholder names referenced by values,
// sorted lexicographically.
func Placeholders(values ...string) []string {
	seen := make(map[string]struct{})
	for _, v := range values {
		for _, m := range placeholder.FindAllStringSubmatch(v, -1) {
			seen[m[1]] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Missing returns the names the loader has no non-empty value for, in input order.
func Missing(names []string, load Loader) ([]string, error) {
	vals, err := load()
	if err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}
	var missing []string
	for _, n := range names {
		if vals[n] == "" {
			missing = append(missing, n)
		}
	}
	return missing, nil
}
