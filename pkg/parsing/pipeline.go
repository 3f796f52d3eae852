package parsing

import (
	"context"
	"fmt"
	"time"

	"github.com/sylva-dev/sylva/pkg/ast"
)

// FirstStageResult carries the output of the grammar front end: a root parse
// artifact of collaborator-defined type R, the diagnostics produced while
// parsing, and timing metadata. Root is non-nil whenever no fatal syntactic
// issue aborted parsing entirely, but second-stage callers must tolerate a
// zero Root regardless.
type FirstStageResult[R any] struct {
	Root     R
	HasRoot  bool
	Issues   []Issue
	Code     string
	Duration time.Duration
}

// Result is the output of the full two-stage pipeline: the typed AST (nil
// when the first stage produced nothing usable), all accumulated issues, and
// per-stage timing.
type Result[T ast.Node] struct {
	Root           T
	Issues         []Issue
	FirstStageTime time.Duration
	TotalTime      time.Duration
}

// Correct reports whether the result carries no error-severity issues.
func (r *Result[T]) Correct() bool {
	return !HasErrors(r.Issues)
}

// FirstStageParser is the grammar front end collaborator. Implementations
// produce the first-stage tree; they never abort on recoverable syntax
// errors, reporting them as issues instead.
type FirstStageParser[R any] interface {
	ParseFirstStage(ctx context.Context, code string) (*FirstStageResult[R], error)
}

// ASTBuilder turns a first-stage result into the typed AST root. It appends
// translation issues to issues and returns the zero T when the source maps to
// nothing.
type ASTBuilder[R any, T ast.Node] func(ctx context.Context, first *FirstStageResult[R], issues *[]Issue) (T, error)

// PostProcessor adjusts a fully built AST, appending issues as needed.
// Typical uses are symbol resolution and semantic checks.
type PostProcessor[T ast.Node] func(root T, issues *[]Issue)

// Pipeline orchestrates the two parse stages, assigns parent links, and runs
// post-processing. The zero value is not usable; construct with NewPipeline.
type Pipeline[R any, T ast.Node] struct {
	first          FirstStageParser[R]
	build          ASTBuilder[R, T]
	postProcessors []PostProcessor[T]
	ignoredProps   []string
}

// NewPipeline creates a pipeline from a first-stage parser and an AST builder.
func NewPipeline[R any, T ast.Node](first FirstStageParser[R], build ASTBuilder[R, T]) *Pipeline[R, T] {
	return &Pipeline[R, T]{first: first, build: build}
}

// WithPostProcessor appends a post-processing step, run in order after parent
// assignment.
func (p *Pipeline[R, T]) WithPostProcessor(pp PostProcessor[T]) *Pipeline[R, T] {
	p.postProcessors = append(p.postProcessors, pp)

	return p
}

// WithIgnoredProperties names derived properties that generic walks must
// skip during parent assignment.
func (p *Pipeline[R, T]) WithIgnoredProperties(names ...string) *Pipeline[R, T] {
	p.ignoredProps = append(p.ignoredProps, names...)

	return p
}

// Parse runs both stages on the given code. Recoverable problems surface as
// issues on the result; a returned error means a structural failure
// (collaborator breakage, unclassifiable node types), not bad input.
func (p *Pipeline[R, T]) Parse(ctx context.Context, code string) (*Result[T], error) {
	start := time.Now()

	first, err := p.first.ParseFirstStage(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("first stage: %w", err)
	}

	result := &Result[T]{
		Issues:         first.Issues,
		FirstStageTime: first.Duration,
	}

	if !first.HasRoot {
		result.TotalTime = time.Since(start)

		return result, nil
	}

	root, err := p.build(ctx, first, &result.Issues)
	if err != nil {
		return nil, fmt.Errorf("second stage: %w", err)
	}

	result.Root = root

	if ast.IsNil(root) {
		result.TotalTime = time.Since(start)

		return result, nil
	}

	if assignErr := ast.AssignParents(root, p.ignoredProps...); assignErr != nil {
		return nil, fmt.Errorf("assigning parents: %w", assignErr)
	}

	for _, pp := range p.postProcessors {
		pp(root, &result.Issues)
	}

	result.TotalTime = time.Since(start)

	return result, nil
}
