// Package parsing provides diagnostic values and the two-stage parse driver:
// a first stage delegated to a grammar front end, a second stage building the
// typed AST, followed by parent assignment and post-processing.
package parsing

import (
	"fmt"

	"github.com/sylva-dev/sylva/pkg/ast"
)

// IssueSeverity ranks a diagnostic.
type IssueSeverity int

// Severity constants, ordered from least to most severe.
const (
	SeverityInfo IssueSeverity = iota
	SeverityWarning
	SeverityError
)

func (s IssueSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// IssueType tells which pipeline stage produced a diagnostic.
type IssueType int

// Issue type constants.
const (
	IssueLexical IssueType = iota
	IssueSyntactic
	IssueSemantic
	IssueTranslation
)

func (t IssueType) String() string {
	switch t {
	case IssueLexical:
		return "lexical"
	case IssueSyntactic:
		return "syntactic"
	case IssueSemantic:
		return "semantic"
	case IssueTranslation:
		return "translation"
	default:
		return "unknown"
	}
}

// Issue is one diagnostic accumulated while parsing or transforming. Issues
// are carried alongside the tree; they are never thrown.
type Issue struct {
	Type     IssueType     `json:"type"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
	Position *ast.Position `json:"position,omitempty"`
}

func (i Issue) String() string {
	if i.Position != nil {
		return fmt.Sprintf("%s %s at %s: %s", i.Severity, i.Type, i.Position, i.Message)
	}

	return fmt.Sprintf("%s %s: %s", i.Severity, i.Type, i.Message)
}

// SyntacticIssue builds an error-severity syntactic issue.
func SyntacticIssue(message string, pos *ast.Position) Issue {
	return Issue{Type: IssueSyntactic, Severity: SeverityError, Message: message, Position: pos}
}

// TranslationIssue builds a translation-stage issue with the given severity.
func TranslationIssue(severity IssueSeverity, message string, pos *ast.Position) Issue {
	return Issue{Type: IssueTranslation, Severity: severity, Message: message, Position: pos}
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}

	return false
}
