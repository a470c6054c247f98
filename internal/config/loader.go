package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "scenariogen.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// Restricted reports whether direct image references are forbidden, either
// by configuration or because the CI marker variable is set.
func (c *Config) Restricted() bool {
	if c.Policy.Restricted {
		return true
	}
	return c.Policy.CIEnvVar != "" && os.Getenv(c.Policy.CIEnvVar) != ""
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Catalog.URL, "SCENARIOGEN_CATALOG_URL")
	setDuration(&cfg.Catalog.Timeout, "SCENARIOGEN_CATALOG_TIMEOUT")
	setInt(&cfg.Catalog.MaxParallel, "SCENARIOGEN_CATALOG_MAX_PARALLEL")
	setInt64(&cfg.Catalog.CacheEntries, "SCENARIOGEN_CATALOG_CACHE_ENTRIES")
	setDuration(&cfg.Catalog.CacheTTL, "SCENARIOGEN_CATALOG_CACHE_TTL")

	setInt(&cfg.Breaker.MaxFailures, "SCENARIOGEN_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "SCENARIOGEN_BREAKER_TIMEOUT")

	setBool(&cfg.Policy.Restricted, "SCENARIOGEN_RESTRICTED")
	setString(&cfg.Policy.CIEnvVar, "SCENARIOGEN_CI_ENV_VAR")

	setString(&cfg.Output.Dir, "SCENARIOGEN_OUTPUT_DIR")
	setString(&cfg.Output.ComposeFile, "SCENARIOGEN_COMPOSE_FILE")
	setString(&cfg.Output.ScenarioFile, "SCENARIOGEN_SCENARIO_FILE")
	setString(&cfg.Output.EnvFile, "SCENARIOGEN_ENV_FILE")
	setString(&cfg.Output.ResultsDir, "SCENARIOGEN_RESULTS_DIR")

	setString(&cfg.Logging.Level, "SCENARIOGEN_LOG_LEVEL")
	setString(&cfg.Logging.Service, "SCENARIOGEN_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "SCENARIOGEN_LOG_ASYNC")

	setString(&cfg.Server.Port, "SCENARIOGEN_PORT")
	setFloat64(&cfg.Server.RateLimit, "SCENARIOGEN_RATE_LIMIT")
	setInt(&cfg.Server.RateBurst, "SCENARIOGEN_RATE_BURST")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.Subject, "SCENARIOGEN_NATS_SUBJECT")

	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.OTEL.ServiceName, "OTEL_SERVICE_NAME")
	setBool(&cfg.OTEL.Insecure, "OTEL_EXPORTER_OTLP_INSECURE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Catalog.URL == "" {
		return errors.New("catalog.url is required")
	}
	if cfg.Catalog.Timeout <= 0 {
		return errors.New("catalog.timeout must be > 0")
	}
	if cfg.Catalog.MaxParallel < 1 {
		return errors.New("catalog.max_parallel must be >= 1")
	}
	if cfg.Catalog.CacheEntries < 0 {
		return errors.New("catalog.cache_entries must be >= 0")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Output.ComposeFile == "" || cfg.Output.ScenarioFile == "" || cfg.Output.EnvFile == "" {
		return errors.New("output file names are required")
	}
	if cfg.Server.RateLimit <= 0 || cfg.Server.RateBurst < 1 {
		return errors.New("server rate limit must be > 0 with burst >= 1")
	}
	if cfg.Output.ResultsDir == "" {
		return errors.New("output.results_dir is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
