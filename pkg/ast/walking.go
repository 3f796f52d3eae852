package ast

import "reflect"

// Children returns the node's direct children in property declaration order,
// discovered through introspection. Properties named in ignore are skipped.
// Reference properties never contribute children.
func Children(node Node, ignore ...string) ([]Node, error) {
	props, err := PropertiesOf(node, ignore...)
	if err != nil {
		return nil, err
	}

	var children []Node

	for _, prop := range props {
		if !prop.ProvidesNodes {
			continue
		}

		value := reflect.ValueOf(prop.Value)

		switch prop.Multiplicity {
		case Many:
			for idx := range value.Len() {
				child := nodeFromValue(value.Index(idx))
				if child != nil {
					children = append(children, child)
				}
			}
		case Singular, Optional:
			child := nodeFromValue(value)
			if child != nil {
				children = append(children, child)
			}
		}
	}

	return children, nil
}

// IsNil reports whether node is nil, including a typed nil pointer behind the
// interface. Builders returning the zero value of a pointer node type produce
// exactly that shape.
func IsNil(node Node) bool {
	if node == nil {
		return true
	}

	value := reflect.ValueOf(node)

	return value.Kind() == reflect.Pointer && value.IsNil()
}

// nodeFromValue extracts a non-nil Node from a reflected property value.
func nodeFromValue(value reflect.Value) Node {
	if !value.IsValid() {
		return nil
	}

	if (value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface) && value.IsNil() {
		return nil
	}

	node, ok := value.Interface().(Node)
	if !ok {
		return nil
	}

	return node
}

// Walk visits node and all its descendants in pre-order. Traversal stops
// early when fn returns false for a node (its subtree is skipped).
func Walk(node Node, fn func(Node) bool, ignore ...string) error {
	if IsNil(node) {
		return nil
	}

	if !fn(node) {
		return nil
	}

	children, err := Children(node, ignore...)
	if err != nil {
		return err
	}

	for _, child := range children {
		if walkErr := Walk(child, fn, ignore...); walkErr != nil {
			return walkErr
		}
	}

	return nil
}

// WalkDescendants visits all descendants of node in pre-order, excluding the
// node itself.
func WalkDescendants(node Node, fn func(Node) bool, ignore ...string) error {
	children, err := Children(node, ignore...)
	if err != nil {
		return err
	}

	for _, child := range children {
		if walkErr := Walk(child, fn, ignore...); walkErr != nil {
			return walkErr
		}
	}

	return nil
}

// AssignParents walks the tree and sets every child's parent link. The root's
// own parent is left untouched. Call it once after tree construction; the
// transformation engine assigns parents in-line instead and does not need it.
func AssignParents(root Node, ignore ...string) error {
	if IsNil(root) {
		return nil
	}

	children, err := Children(root, ignore...)
	if err != nil {
		return err
	}

	for _, child := range children {
		child.SetParent(root)

		if assignErr := AssignParents(child, ignore...); assignErr != nil {
			return assignErr
		}
	}

	return nil
}

// FindAncestorOfType returns the nearest ancestor of node for which match
// returns true, or nil.
func FindAncestorOfType(node Node, match func(Node) bool) Node {
	if node == nil {
		return nil
	}

	for current := node.Parent(); current != nil; current = current.Parent() {
		if match(current) {
			return current
		}
	}

	return nil
}
