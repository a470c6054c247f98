package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Strob0t/scenariogen/internal/domain/results"
)

const defaultDifficultyFile = "task_difficulty.json"

func runEnrich(args []string) error {
	fs := flag.NewFlagSet("enrich", flag.ContinueOnError)
	difficultyPath := fs.String("difficulty-file", defaultDifficultyFile, "path to the task difficulty JSON file")
	outputPath := fs.String("output", "", "output file path (default: overwrite input file)")
	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: scenariogen enrich <results.json> [--difficulty-file f] [--output f]")
	}
	resultsPath := fs.Arg(0)

	out := *outputPath
	if out == "" {
		out = resultsPath
	}
	if err := enrichFile(resultsPath, *difficultyPath, out); err != nil {
		return err
	}

	fmt.Printf("Enriched results written to %s\n", out)
	return nil
}

// enrichFile reads the results and difficulty documents, enriches the
// results and writes them to out.
func enrichFile(resultsPath, difficultyPath, out string) error {
	data, err := os.ReadFile(resultsPath) //nolint:gosec // G304: operator supplied path
	if err != nil {
		return fmt.Errorf("%s not found: %w", resultsPath, err)
	}
	diffData, err := os.ReadFile(difficultyPath) //nolint:gosec // G304: operator supplied path
	if err != nil {
		return fmt.Errorf("%s not found: %w", difficultyPath, err)
	}

	doc, err := results.Decode(data)
	if err != nil {
		return err
	}
	difficulty, err := results.ParseDifficulty(diffData)
	if err != nil {
		return err
	}

	enriched, err := results.Enrich(doc, difficulty)
	if err != nil {
		return err
	}
	encoded, err := results.Encode(enriched)
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, encoded, 0o644); err != nil { //nolint:gosec // G306: results are not secret
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

// reorderArgs moves flags ahead of positional arguments so that
// "enrich results.json --output x" parses like "enrich --output x results.json".
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case len(a) > 1 && a[0] == '-':
			flags = append(flags, a)
			if !strings.Contains(a, "=") && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
		default:
			positional = append(positional, a)
		}
	}
	return append(flags, positional...)
}
