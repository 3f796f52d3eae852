package main

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/fatih/color"

	"github.com/sylva-dev/sylva/pkg/ast"
	"github.com/sylva-dev/sylva/pkg/parsing"
)

const indentStep = "  "

// dumpTree prints a typed AST as an indented outline: one line per node with
// its type name, position and scalar attributes.
func dumpTree(w io.Writer, node ast.Node) error {
	return dumpNode(w, node, 0)
}

func dumpNode(w io.Writer, node ast.Node, depth int) error {
	if ast.IsNil(node) {
		return nil
	}

	label := color.New(color.FgCyan).Sprint(nodeTypeName(node))
	position := ""

	if pos := node.Position(); pos != nil {
		position = color.New(color.Faint).Sprintf(" [%s]", pos)
	}

	attrs, err := attributeSummary(node)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat(indentStep, depth), label, attrs, position)

	children, err := ast.Children(node)
	if err != nil {
		return err
	}

	for _, child := range children {
		if dumpErr := dumpNode(w, child, depth+1); dumpErr != nil {
			return dumpErr
		}
	}

	return nil
}

func attributeSummary(node ast.Node) (string, error) {
	props, err := ast.PropertiesOf(node)
	if err != nil {
		return "", err
	}

	var parts []string

	for _, prop := range props {
		if prop.ProvidesNodes || prop.IsReference {
			continue
		}

		parts = append(parts, fmt.Sprintf("%s=%v", prop.Name, prop.Value))
	}

	if len(parts) == 0 {
		return "", nil
	}

	return " " + color.New(color.FgYellow).Sprint(strings.Join(parts, " ")), nil
}

func nodeTypeName(node ast.Node) string {
	t := reflect.TypeOf(node)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.Name()
}

// printIssues writes diagnostics color-coded by severity.
func printIssues(w io.Writer, issues []parsing.Issue) {
	for _, issue := range issues {
		var c *color.Color

		switch issue.Severity {
		case parsing.SeverityError:
			c = color.New(color.FgRed)
		case parsing.SeverityWarning:
			c = color.New(color.FgYellow)
		default:
			c = color.New(color.FgCyan)
		}

		c.Fprintf(w, "%s\n", issue)
	}
}
