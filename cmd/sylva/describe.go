package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sylva-dev/sylva/examples/jsonlang"
	"github.com/sylva-dev/sylva/pkg/metamodel"
)

func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Show the metamodel schema of the bundled language front end",
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := jsonlang.Schema()
			if err != nil {
				return fmt.Errorf("building schema: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), renderSchema(schema))

			return nil
		},
	}
}

// renderSchema formats a schema as one table per concern: classifiers with
// their features, then enumerations.
func renderSchema(schema *metamodel.Schema) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	tbl.AppendHeader(table.Row{"Classifier", "Super", "Feature", "Kind", "Type", "Card"})

	for _, classifier := range schema.Classifiers {
		name := classifier.Name
		if classifier.Abstract {
			name += " (abstract)"
		}

		if len(classifier.Features) == 0 {
			tbl.AppendRow(table.Row{name, classifier.Super, "", "", "", ""})

			continue
		}

		for idx, feature := range classifier.Features {
			row := table.Row{"", "", feature.Name, feature.Kind, feature.Type, cardinality(feature)}
			if idx == 0 {
				row[0] = name
				row[1] = classifier.Super
			}

			tbl.AppendRow(row)
		}
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d classifiers", len(schema.Classifiers))})

	out := fmt.Sprintf("Schema: %s\n%s\n", schema.Name, tbl.Render())

	if len(schema.Enumerations) > 0 {
		enumTbl := table.NewWriter()
		enumTbl.SetStyle(table.StyleLight)
		enumTbl.AppendHeader(table.Row{"Enumeration", "Literals"})

		for _, enum := range schema.Enumerations {
			enumTbl.AppendRow(table.Row{enum.Name, strings.Join(enum.Literals, ", ")})
		}

		out += enumTbl.Render() + "\n"
	}

	return out
}

func cardinality(feature metamodel.Feature) string {
	switch {
	case feature.Many:
		return "*"
	case feature.Optional:
		return "?"
	default:
		return "1"
	}
}
