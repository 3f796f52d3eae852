// Package treesitter is the tree-sitter grammar front end: it parses source
// text with a go-sitter-forest grammar and exposes the resulting concrete
// syntax tree as Source values that the transformation engine can consume
// directly (tag dispatch, field resolution, provenance).
package treesitter

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/sylva-dev/sylva/pkg/ast"
	"github.com/sylva-dev/sylva/pkg/safeconv"
	"github.com/sylva-dev/sylva/pkg/transform"
)

// Source wraps one tree-sitter node together with the parsed content. It is
// the first-stage artifact flowing into the second stage: it dispatches by
// grammar kind, resolves named fields for dotted paths, and carries position
// and text provenance.
type Source struct {
	node     sitter.Node
	tree     *sitter.Tree
	content  []byte
	language string
}

var (
	_ transform.Tagged        = (*Source)(nil)
	_ transform.FieldResolver = (*Source)(nil)
	_ ast.Origin              = (*Source)(nil)
)

// TypeTag returns the grammar kind of the wrapped node ("object", "pair",
// "string"...). Factory registration keys off this tag.
func (s *Source) TypeTag() string {
	return s.node.Type()
}

// Type is an alias of TypeTag for readers thinking in tree-sitter terms.
func (s *Source) Type() string {
	return s.node.Type()
}

// Language returns the grammar name the node was parsed with.
func (s *Source) Language() string {
	return s.language
}

// Content returns the full source bytes the tree was parsed from.
func (s *Source) Content() []byte {
	return s.content
}

// ResolveField implements dotted-path resolution over the syntax tree. A
// grammar field with the given name wins; otherwise named children whose kind
// matches the name are returned (one child as a single value, several as a
// slice). A few virtual fields are always available: "text", "kind",
// "children" and "child" (the first named child, nil when there is none).
func (s *Source) ResolveField(name string) (any, bool) {
	switch name {
	case "text":
		return s.SourceText(), true
	case "kind":
		return s.node.Type(), true
	case "children":
		return s.NamedChildren(), true
	case "child":
		if s.node.NamedChildCount() == 0 {
			return nil, true
		}

		return s.wrap(s.node.NamedChild(0)), true
	}

	if fieldNode := s.node.ChildByFieldName(name); !fieldNode.IsNull() {
		return s.wrap(fieldNode), true
	}

	var matched []*Source

	for idx := range s.node.NamedChildCount() {
		child := s.node.NamedChild(idx)
		if child.Type() == name {
			matched = append(matched, s.wrap(child))
		}
	}

	switch len(matched) {
	case 0:
		return nil, false
	case 1:
		return matched[0], true
	default:
		return matched, true
	}
}

// NamedChildren returns the named children of the node in document order.
func (s *Source) NamedChildren() []*Source {
	count := s.node.NamedChildCount()
	children := make([]*Source, 0, count)

	for idx := range count {
		children = append(children, s.wrap(s.node.NamedChild(idx)))
	}

	return children
}

// ChildByField returns the child occupying the named grammar field, or nil.
func (s *Source) ChildByField(name string) *Source {
	fieldNode := s.node.ChildByFieldName(name)
	if fieldNode.IsNull() {
		return nil
	}

	return s.wrap(fieldNode)
}

// Position implements ast.Origin. Lines and columns are 1-based.
func (s *Source) Position() *ast.Position {
	start := s.node.StartPoint()
	end := s.node.EndPoint()

	return ast.NewPosition(
		start.Row+1,
		start.Column+1,
		s.node.StartByte(),
		end.Row+1,
		end.Column+1,
		s.node.EndByte(),
	)
}

// SourceText implements ast.Origin: the exact source slice the node spans.
func (s *Source) SourceText() string {
	start := s.node.StartByte()
	end := s.node.EndByte()

	if start > end || safeconv.MustUintToInt(end) > len(s.content) {
		return ""
	}

	return string(s.content[start:end])
}

// Close releases the underlying tree. Call it on the root Source once the
// second stage has finished; child Sources share the root's tree and must not
// outlive it.
func (s *Source) Close() {
	if s.tree != nil {
		s.tree.Close()
		s.tree = nil
	}
}

func (s *Source) wrap(child sitter.Node) *Source {
	return &Source{node: child, tree: s.tree, content: s.content, language: s.language}
}

// collectErrors walks the subtree and appends one syntactic issue per ERROR
// node, pruning descent below each so one broken region reports once.
func (s *Source) collectErrors(issues *[]ast.Position) {
	if s.node.Type() == errorNodeKind {
		*issues = append(*issues, *s.Position())

		return
	}

	for idx := range s.node.NamedChildCount() {
		s.wrap(s.node.NamedChild(idx)).collectErrors(issues)
	}
}

const errorNodeKind = "ERROR"
