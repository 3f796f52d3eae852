package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/src-d/enry/v2"
	"github.com/spf13/cobra"

	"github.com/sylva-dev/sylva/examples/jsonlang"
	"github.com/sylva-dev/sylva/internal/observability"
	"github.com/sylva-dev/sylva/pkg/ast"
	"github.com/sylva-dev/sylva/pkg/transform"
)

// ErrUnsupportedLanguage is returned for files outside the bundled front end.
var ErrUnsupportedLanguage = errors.New("unsupported language (the bundled front end handles JSON)")

func parseCmd(configPath *string) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and dump its typed AST",
		Long: `Parse a source file through the two-stage pipeline and print the typed
AST with positions and diagnostics.

Examples:
  sylva parse config.json
  sylva parse -l json data.txt     # force language detection`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, *configPath, args[0], lang)
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", "", "force language detection")

	return cmd
}

func runParse(cmd *cobra.Command, configPath, file, lang string) error {
	cfg, telemetry, logger, err := setup(configPath)
	if err != nil {
		return err
	}
	defer telemetry.Shutdown(cmd.Context()) //nolint:errcheck // best-effort flush on exit

	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	if err = checkLanguage(file, content, lang); err != nil {
		return err
	}

	var opts []transform.Option
	if cfg.Metrics {
		opts = append(opts, transform.WithMeter(telemetry.Meter))
	}

	pipeline, err := jsonlang.NewPipeline(opts...)
	if err != nil {
		return fmt.Errorf("initializing pipeline: %w", err)
	}

	result, err := pipeline.Parse(cmd.Context(), string(content))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", file, err)
	}

	logger.Debug("parsed file",
		"file", file,
		"size", len(content),
		"first_stage", result.FirstStageTime,
		"total", result.TotalTime)

	out := cmd.OutOrStdout()

	printIssues(out, result.Issues)

	if !ast.IsNil(result.Root) {
		if dumpErr := dumpTree(out, result.Root); dumpErr != nil {
			return dumpErr
		}
	}

	nodeCount := 0
	if walkErr := ast.Walk(result.Root, func(ast.Node) bool {
		nodeCount++

		return true
	}); walkErr != nil {
		return walkErr
	}

	fmt.Fprintf(out, "\n%s, %d nodes, parsed in %s (first stage %s)\n",
		humanize.Bytes(uint64(len(content))),
		nodeCount,
		result.TotalTime,
		result.FirstStageTime)

	if cfg.Metrics {
		if metricsErr := printMetrics(cmd, telemetry); metricsErr != nil {
			return metricsErr
		}
	}

	if !result.Correct() {
		return fmt.Errorf("%s: input has errors", file)
	}

	return nil
}

// setup loads the config and initializes logging, metrics and color output.
func setup(configPath string) (*Config, *observability.Telemetry, *slog.Logger, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	level, err := observability.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	obsCfg := observability.Config{
		ServiceName: "sylva",
		LogLevel:    level,
		LogJSON:     cfg.LogJSON,
		Metrics:     cfg.Metrics,
	}

	logger := observability.NewLogger(os.Stderr, obsCfg)
	telemetry := observability.Init(obsCfg)

	if cfg.NoColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	return cfg, telemetry, logger, nil
}

func checkLanguage(file string, content []byte, forced string) error {
	detected := forced
	if detected == "" {
		detected = enry.GetLanguage(filepath.Base(file), content)
	}

	if !strings.EqualFold(detected, jsonlang.GrammarName) {
		return fmt.Errorf("%w: detected %q for %s", ErrUnsupportedLanguage, detected, file)
	}

	return nil
}

func printMetrics(cmd *cobra.Command, telemetry *observability.Telemetry) error {
	totals, err := telemetry.CounterValues(cmd.Context())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}

	sort.Strings(names)

	out := cmd.OutOrStdout()

	for _, name := range names {
		fmt.Fprintf(out, "%s: %d\n", name, totals[name])
	}

	return nil
}
