// Package ast provides the node model for sylva trees: an embeddable base
// node with provenance and parent links, reflection-driven property
// introspection, and generic tree walking built on top of it.
package ast

// Origin is the provenance of a node: where in the original source material
// it came from. A first-stage parse artifact typically implements Origin and
// is attached verbatim to the nodes built from it.
type Origin interface {
	// Position returns the source span, or nil when unknown.
	Position() *Position
	// SourceText returns the original text the node was produced from, or ""
	// when unavailable.
	SourceText() string
}

// Node is one element of an owned tree. Concrete node types embed BaseNode
// and declare their structure as exported struct fields; the introspection
// layer reads that structure without per-type code.
type Node interface {
	// Origin returns the provenance attached to this node, or nil.
	Origin() Origin
	// SetOrigin attaches provenance to this node.
	SetOrigin(origin Origin)
	// Parent returns the owning node, or nil for the root.
	Parent() Node
	// SetParent sets the owning node.
	SetParent(parent Node)
	// Position returns the explicit position override if one was set,
	// otherwise the origin's position.
	Position() *Position
	// SetPosition sets an explicit position overriding the origin's.
	SetPosition(pos *Position)
}

// BaseNode is the embeddable implementation of Node. The zero value is ready
// to use. Its fields are unexported and invisible to introspection.
type BaseNode struct {
	origin Origin
	parent Node
	pos    *Position
}

// Origin implements Node.
func (n *BaseNode) Origin() Origin { return n.origin }

// SetOrigin implements Node.
func (n *BaseNode) SetOrigin(origin Origin) { n.origin = origin }

// Parent implements Node.
func (n *BaseNode) Parent() Node { return n.parent }

// SetParent implements Node.
func (n *BaseNode) SetParent(parent Node) { n.parent = parent }

// Position implements Node. An explicitly set position wins over the origin.
func (n *BaseNode) Position() *Position {
	if n.pos != nil {
		return n.pos
	}

	if n.origin != nil {
		return n.origin.Position()
	}

	return nil
}

// SetPosition implements Node.
func (n *BaseNode) SetPosition(pos *Position) { n.pos = pos }

// SourceText returns the origin's source text, or "" without an origin.
func (n *BaseNode) SourceText() string {
	if n.origin == nil {
		return ""
	}

	return n.origin.SourceText()
}

// NodeOrigin adapts a node into an Origin, so that a tree produced by one
// transformation can serve as the provenance of the next.
type NodeOrigin struct {
	Node Node
}

// Position implements Origin.
func (o NodeOrigin) Position() *Position {
	if o.Node == nil {
		return nil
	}

	return o.Node.Position()
}

// SourceText implements Origin.
func (o NodeOrigin) SourceText() string {
	if o.Node == nil {
		return ""
	}

	if src, ok := o.Node.(interface{ SourceText() string }); ok {
		return src.SourceText()
	}

	return ""
}

// SimpleOrigin is a plain value Origin carrying a position and source text.
type SimpleOrigin struct {
	Pos  *Position
	Text string
}

// Position implements Origin.
func (o SimpleOrigin) Position() *Position { return o.Pos }

// SourceText implements Origin.
func (o SimpleOrigin) SourceText() string { return o.Text }

// Named is a node capability for nodes that always carry a name.
type Named interface {
	GetName() string
}

// PossiblyNamed is a node capability for nodes that may carry a name.
// GetName returns "" when the node is unnamed.
type PossiblyNamed interface {
	GetName() string
}
