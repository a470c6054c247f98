// Package config provides hierarchical configuration loading for scenariogen.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the scenario compiler.
type Config struct {
	Catalog Catalog `yaml:"catalog"`
	Breaker Breaker `yaml:"breaker"`
	Policy  Policy  `yaml:"policy"`
	Output  Output  `yaml:"output"`
	Logging Logging `yaml:"logging"`
	Server  Server  `yaml:"server"`
	NATS    NATS    `yaml:"nats"`
	OTEL    OTEL    `yaml:"otel"`
}

// Catalog holds agent catalog lookup configuration.
type Catalog struct {
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout"`       // per lookup (default: 30s)
	MaxParallel  int           `yaml:"max_parallel"`  // concurrent lookups (default: 4)
	CacheEntries int64         `yaml:"cache_entries"` // 0 disables the lookup cache
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// Breaker holds circuit breaker configuration for catalog calls.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Policy holds resolution policy configuration.
type Policy struct {
	// Restricted forbids direct image references.
	Restricted bool `yaml:"restricted"`
	// CIEnvVar turns Restricted on when set to a non-empty value.
	CIEnvVar string `yaml:"ci_env_var"`
}

// Output holds generated artifact locations.
type Output struct {
	Dir          string `yaml:"dir"`
	ComposeFile  string `yaml:"compose_file"`
	ScenarioFile string `yaml:"scenario_file"`
	EnvFile      string `yaml:"env_file"`
	ResultsDir   string `yaml:"results_dir"` // mounted into the aggregator
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Server holds compile API server configuration.
type Server struct {
	Port      string  `yaml:"port"`
	RateLimit float64 `yaml:"rate_limit"` // compile requests per second per client
	RateBurst int     `yaml:"rate_burst"`
}

// NATS holds compile event publishing configuration. Empty URL disables it.
type NATS struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// OTEL holds OpenTelemetry exporter configuration. Empty endpoint disables export.
type OTEL struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// Defaults returns a Config with the values the public catalog and the
// generated compose layout expect.
func Defaults() Config {
	return Config{
		Catalog: Catalog{
			URL:          "https://agentbeats.dev/api/agents",
			Timeout:      30 * time.Second,
			MaxParallel:  4,
			CacheEntries: 1024,
			CacheTTL:     10 * time.Minute,
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Policy: Policy{
			CIEnvVar: "GITHUB_ACTIONS",
		},
		Output: Output{
			Dir:          ".",
			ComposeFile:  "docker-compose.yml",
			ScenarioFile: "a2a-scenario.toml",
			EnvFile:      ".env.example",
			ResultsDir:   "output",
		},
		Logging: Logging{
			Level:   "info",
			Service: "scenariogen",
		},
		Server: Server{
			Port:      "8080",
			RateLimit: 5,
			RateBurst: 10,
		},
		NATS: NATS{
			Subject: "scenario.compiled",
		},
		OTEL: OTEL{
			ServiceName: "scenariogen",
		},
	}
}
