package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Strob0t/scenariogen/internal/adapter/fsartifact"
	"github.com/Strob0t/scenariogen/internal/adapter/scenariofile"
	"github.com/Strob0t/scenariogen/internal/config"
)

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	scenarioPath := fs.String("scenario", "scenario.toml", "path to the scenario TOML file")
	outDir := fs.String("out", "", "output directory (default: output.dir from config)")
	configPath := fs.String("config", config.DefaultConfigFile, "path to the YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*scenarioPath); err != nil {
		return fmt.Errorf("%s not found", *scenarioPath)
	}

	cfg, flush, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer flush()

	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	sc, err := scenariofile.Load(*scenarioPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	compiler, cleanup, err := buildCompiler(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	c, err := compiler.Generate(ctx, sc, fsartifact.New(cfg.Output))
	if err != nil {
		return err
	}

	if len(c.Artifacts.Env) > 0 {
		fmt.Printf("Generated %s\n", filepath.Join(cfg.Output.Dir, cfg.Output.EnvFile))
	}
	fmt.Printf("Generated %s and %s\n",
		filepath.Join(cfg.Output.Dir, cfg.Output.ComposeFile),
		filepath.Join(cfg.Output.Dir, cfg.Output.ScenarioFile))
	return nil
}
