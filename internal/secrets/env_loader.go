package secrets

import "os"

// EnvLoader returns a Loader reading the named variables from the process
// environment. Unset and empty variables are left out of the result.
func EnvLoader(names ...string) Loader {
	return func() (map[string]string, error) {
		vals := make(map[string]string, len(names))
		for _, name := range names {
			if v, ok := os.LookupEnv(name); ok && v != "" {
				vals[name] = v
			}
		}
		return vals, nil
	}
}
