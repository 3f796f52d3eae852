// Package main provides the entry point for the sylva CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sylva-dev/sylva/pkg/version"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "sylva",
		Short: "Sylva AST bridge - parse, inspect and export typed syntax trees",
		Long: `Sylva parses source files with a tree-sitter grammar, lifts the raw
syntax tree into a typed AST through the transformation engine, and can
describe or export the result.

Commands:
  parse     Parse a file and dump its typed AST
  describe  Show the metamodel schema of a language front end
  export    Parse a file and write an object-graph document`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: .sylva.yaml in CWD or $HOME)")

	rootCmd.AddCommand(parseCmd(&configPath))
	rootCmd.AddCommand(describeCmd())
	rootCmd.AddCommand(exportCmd(&configPath))
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "sylva %s\n", version.String())
		},
	}
}
