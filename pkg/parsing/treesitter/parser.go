package treesitter

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	forest "github.com/alexaandru/go-sitter-forest"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/src-d/enry/v2"

	"github.com/sylva-dev/sylva/pkg/ast"
	"github.com/sylva-dev/sylva/pkg/parsing"
)

// Sentinel errors for front end construction and parsing.
var (
	ErrLanguageNotAvailable = errors.New("tree-sitter language not available")
	ErrLanguageUnknown      = errors.New("could not detect a language for file")
	errPoolType             = errors.New("parser pool returned unexpected type")
)

// Parser is the tree-sitter first-stage parser for one grammar. It is safe
// for concurrent use; tree-sitter parser instances are pooled per call.
type Parser struct {
	language string
	lang     *sitter.Language
	pool     sync.Pool
}

// NewParser creates a first-stage parser for the named grammar ("json",
// "go", "python"...). The name is resolved against the go-sitter-forest
// registry; unknown grammars return ErrLanguageNotAvailable.
func NewParser(language string) (*Parser, error) {
	// forest panics on unknown grammar names; turn that into an error.
	var lang *sitter.Language

	func() {
		defer func() {
			_ = recover() //nolint:errcheck // recover() returns any, not error
		}()

		lang = forest.GetLanguage(language)
	}()

	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotAvailable, language)
	}

	parser := &Parser{language: language, lang: lang}
	parser.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return parser, nil
}

// NewParserForFile detects the language of the given file with enry and
// creates a parser for it. Content may be nil; it improves detection for
// ambiguous extensions.
func NewParserForFile(filename string, content []byte) (*Parser, error) {
	detected := enry.GetLanguage(path.Base(filename), content)
	if detected == "" {
		return nil, fmt.Errorf("%w: %s", ErrLanguageUnknown, filename)
	}

	return NewParser(strings.ToLower(detected))
}

// Language returns the grammar name this parser was built for.
func (p *Parser) Language() string {
	return p.language
}

// ParseFirstStage implements parsing.FirstStageParser. Malformed input never
// fails the call: tree-sitter recovers around broken regions, each surfacing
// as one syntactic issue, and the (partial) tree is still returned. The root
// Source owns the underlying tree; callers release it with Close once the
// second stage is done.
func (p *Parser) ParseFirstStage(ctx context.Context, code string) (*parsing.FirstStageResult[*Source], error) {
	start := time.Now()

	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	content := []byte(code)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}

	result := &parsing.FirstStageResult[*Source]{
		Code:     code,
		Duration: time.Since(start),
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()

		result.Issues = append(result.Issues, parsing.SyntacticIssue("parser produced no syntax tree", nil))
		result.Duration = time.Since(start)

		return result, nil
	}

	source := &Source{node: root, tree: tree, content: content, language: p.language}

	var errorSpans []ast.Position

	source.collectErrors(&errorSpans)

	for _, span := range errorSpans {
		pos := span

		result.Issues = append(result.Issues,
			parsing.SyntacticIssue("syntax error", &pos))
	}

	result.Root = source
	result.HasRoot = true
	result.Duration = time.Since(start)

	return result, nil
}
