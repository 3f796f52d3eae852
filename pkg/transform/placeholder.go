package transform

import (
	"fmt"
	"reflect"

	"github.com/sylva-dev/sylva/pkg/ast"
)

// GenericNode is the placeholder produced for a source construct with no
// registered factory when the fallback is enabled. It carries the original
// provenance but no children; the engine does not descend into unmapped
// subtrees.
type GenericNode struct {
	ast.BaseNode

	// SourceType names the source runtime type that had no factory.
	SourceType string
}

func (n *GenericNode) String() string {
	return fmt.Sprintf("GenericNode(%s)", n.SourceType)
}

// GenericErrorNode is the placeholder produced when a factory's constructor
// fails and the fallback is enabled. The failure stays attached to the node;
// sibling subtrees are unaffected.
type GenericErrorNode struct {
	ast.BaseNode

	Err error `ast:"-"`
}

// Message returns a printable description of the wrapped failure.
func (n *GenericErrorNode) Message() string {
	if n.Err == nil {
		return "unspecified failure"
	}

	return n.Err.Error()
}

func (n *GenericErrorNode) String() string {
	return fmt.Sprintf("GenericErrorNode(%s)", n.Message())
}

// newGenericNode builds an unmapped placeholder with best-effort provenance
// from the source value.
func newGenericNode(sourceType reflect.Type, source any, parent ast.Node) *GenericNode {
	placeholder := &GenericNode{SourceType: sourceType.String()}
	attachOrigin(placeholder, source)
	placeholder.SetParent(parent)

	return placeholder
}

// newGenericErrorNode builds an error placeholder. Provenance attachment is
// best-effort: the constructor already failed, so the origin may be partial.
func newGenericErrorNode(err error, source any, parent ast.Node) *GenericErrorNode {
	placeholder := &GenericErrorNode{Err: err}
	attachOrigin(placeholder, source)
	placeholder.SetParent(parent)

	return placeholder
}

// attachOrigin copies provenance from the source value onto the node when the
// source itself carries position information.
func attachOrigin(node ast.Node, source any) {
	if origin, ok := source.(ast.Origin); ok {
		node.SetOrigin(origin)
	}
}
