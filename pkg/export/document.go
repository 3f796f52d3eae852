package export

import (
	"github.com/sylva-dev/sylva/pkg/ast"
	"github.com/sylva-dev/sylva/pkg/parsing"
)

// DocumentVersion is the current document format version.
const DocumentVersion = 1

// Document is the serialized object-graph form of a finished tree: the
// schema it conforms to, the root object, and the issues accumulated while
// producing the tree.
type Document struct {
	Schema  string          `json:"schema" yaml:"schema"`
	Version int             `json:"version" yaml:"version"`
	Root    *Object         `json:"root,omitempty" yaml:"root,omitempty"`
	Issues  []parsing.Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Object is one node of the exported graph. Feature names equal schema
// feature names equal introspected property names, guaranteed by
// construction.
type Object struct {
	ID         string               `json:"id" yaml:"id"`
	Classifier string               `json:"classifier" yaml:"classifier"`
	Position   *ast.Position        `json:"position,omitempty" yaml:"position,omitempty"`
	Attributes map[string]any       `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Children   map[string][]*Object `json:"children,omitempty" yaml:"children,omitempty"`
	References map[string]string    `json:"references,omitempty" yaml:"references,omitempty"`
}

// CountObjects returns the total number of objects in the document.
func (d *Document) CountObjects() int {
	return countObjects(d.Root)
}

func countObjects(obj *Object) int {
	if obj == nil {
		return 0
	}

	total := 1

	for _, children := range obj.Children {
		for _, child := range children {
			total += countObjects(child)
		}
	}

	return total
}
