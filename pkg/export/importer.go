package export

import (
	"fmt"
	"maps"
	"slices"

	"github.com/sylva-dev/sylva/pkg/ast"
)

// ImportedNode is the generic node form a document imports into: classifier
// and attributes as data, children as owned nodes. Consumers wanting typed
// trees run an ImportedNode tree through the transformation engine.
type ImportedNode struct {
	ast.BaseNode

	ID         string
	Classifier string
	Attributes map[string]any
	Features   []*ImportedNode
	feature    string
}

// Feature returns the name of the containment feature this node arrived
// under, or "" for the root.
func (n *ImportedNode) Feature() string {
	return n.feature
}

// ChildrenOf returns the imported children that arrived under the named
// containment feature, in document order.
func (n *ImportedNode) ChildrenOf(feature string) []*ImportedNode {
	var matched []*ImportedNode

	for _, child := range n.Features {
		if child.feature == feature {
			matched = append(matched, child)
		}
	}

	return matched
}

// Import rebuilds a generic tree from a document, with parent links assigned.
func Import(doc *Document) (*ImportedNode, error) {
	if doc == nil || doc.Root == nil {
		return nil, nil
	}

	root, err := importObject(doc.Root, "")
	if err != nil {
		return nil, err
	}

	if assignErr := ast.AssignParents(root); assignErr != nil {
		return nil, assignErr
	}

	return root, nil
}

func importObject(obj *Object, feature string) (*ImportedNode, error) {
	if obj.Classifier == "" {
		return nil, fmt.Errorf("object %q has no classifier", obj.ID)
	}

	node := &ImportedNode{
		ID:         obj.ID,
		Classifier: obj.Classifier,
		Attributes: obj.Attributes,
		feature:    feature,
	}

	node.SetPosition(obj.Position)

	for _, childFeature := range slices.Sorted(maps.Keys(obj.Children)) {
		for _, child := range obj.Children[childFeature] {
			imported, err := importObject(child, childFeature)
			if err != nil {
				return nil, err
			}

			node.Features = append(node.Features, imported)
		}
	}

	return node, nil
}
