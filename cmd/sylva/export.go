package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sylva-dev/sylva/examples/jsonlang"
	"github.com/sylva-dev/sylva/pkg/export"
)

func exportCmd(configPath *string) *cobra.Command {
	var output string
	var validate bool

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Parse a file and write an object-graph document",
		Long: `Parse a source file and export the typed AST together with its schema
name and diagnostics as an object-graph document.

The output format follows the file extension: .json, .yaml, or .json.lz4.

Examples:
  sylva export config.json -o config.ast.json
  sylva export config.json -o config.ast.yaml
  sylva export config.json -o config.ast.json.lz4 --validate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, *configPath, args[0], output, validate)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <file>.ast.json)")
	cmd.Flags().BoolVar(&validate, "validate", false, "validate the document against the schema before writing")

	return cmd
}

func runExport(cmd *cobra.Command, configPath, file, output string, validate bool) error {
	_, telemetry, logger, err := setup(configPath)
	if err != nil {
		return err
	}
	defer telemetry.Shutdown(cmd.Context()) //nolint:errcheck // best-effort flush on exit

	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	if err = checkLanguage(file, content, ""); err != nil {
		return err
	}

	pipeline, err := jsonlang.NewPipeline()
	if err != nil {
		return fmt.Errorf("initializing pipeline: %w", err)
	}

	result, err := pipeline.Parse(cmd.Context(), string(content))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", file, err)
	}

	if !result.Correct() {
		printIssues(cmd.ErrOrStderr(), result.Issues)

		return fmt.Errorf("%s: input has errors, refusing to export", file)
	}

	schema, err := jsonlang.Schema()
	if err != nil {
		return fmt.Errorf("building schema: %w", err)
	}

	doc, err := export.NewExporter(schema).Export(result.Root, result.Issues)
	if err != nil {
		return fmt.Errorf("exporting tree: %w", err)
	}

	if validate {
		if validateErr := export.Validate(doc, schema); validateErr != nil {
			return fmt.Errorf("validating document: %w", validateErr)
		}
	}

	if output == "" {
		output = file + ".ast.json"
	}

	codec := export.CodecForExtension(output)

	dir, base := filepath.Split(output)
	if dir == "" {
		dir = "."
	}

	base = strings.TrimSuffix(base, codec.Extension())

	if err = export.SaveDocument(dir, base, codec, doc); err != nil {
		return err
	}

	info, err := os.Stat(filepath.Join(dir, base+codec.Extension()))
	if err != nil {
		return fmt.Errorf("stat output: %w", err)
	}

	logger.Debug("exported document", "file", output, "objects", doc.CountObjects())

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d objects)\n",
		output, humanize.Bytes(uint64(info.Size())), doc.CountObjects())

	return nil
}
