// Command scenariogen compiles a multi-agent scenario into docker compose,
// routing and secrets artifacts, and post-processes evaluation results.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Strob0t/scenariogen/internal/config"
	"github.com/Strob0t/scenariogen/internal/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		printHelp()
		return nil
	}

	switch args[0] {
	case "generate":
		return runGenerate(args[1:])
	case "enrich":
		return runEnrich(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		printHelp()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `Usage: scenariogen <command> [options]

Commands:
  generate   Compile a scenario into docker-compose.yml, a2a-scenario.toml and .env.example
  enrich     Add display fields and recomputed avg_difficulty to a results file
  serve      Run the compile HTTP API
  help       Show this help message

Examples:
  scenariogen generate --scenario scenario.toml
  scenariogen generate --scenario scenario.toml --out build/
  scenariogen enrich output/results.json --difficulty-file task_difficulty.json
  scenariogen serve --config scenariogen.yaml
`)
}

// setup loads configuration and installs the process logger. The returned
// function flushes the logger.
func setup(configPath string) (*config.Config, func(), error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, closer := logger.New(cfg.Logging)
	slog.SetDefault(log)

	return cfg, closer.Close, nil
}
