package export

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/sylva-dev/sylva/pkg/ast"
	"github.com/sylva-dev/sylva/pkg/metamodel"
	"github.com/sylva-dev/sylva/pkg/parsing"
)

// Exporter turns a finished tree into a Document conforming to a schema
// produced by the metamodel builder. Exporter and builder agree on names and
// multiplicity because both read the same property introspection.
type Exporter struct {
	schema *metamodel.Schema
}

// NewExporter creates an Exporter for trees described by the given schema.
func NewExporter(schema *metamodel.Schema) *Exporter {
	return &Exporter{schema: schema}
}

// Export serializes the tree rooted at root, attaching the given issues.
// A nil root yields a document without a root object.
func (e *Exporter) Export(root ast.Node, issues []parsing.Issue) (*Document, error) {
	doc := &Document{
		Schema:  e.schema.Name,
		Version: DocumentVersion,
		Issues:  issues,
	}

	if root == nil {
		return doc, nil
	}

	rootObject, err := e.exportNode(root)
	if err != nil {
		return nil, err
	}

	doc.Root = rootObject

	return doc, nil
}

func (e *Exporter) exportNode(node ast.Node) (*Object, error) {
	classifier := classifierNameOf(node)
	if e.schema.ClassifierNamed(classifier) == nil {
		return nil, fmt.Errorf("node type %T has no classifier %q in schema %q", node, classifier, e.schema.Name)
	}

	obj := &Object{
		ID:         uuid.NewString(),
		Classifier: classifier,
		Position:   node.Position(),
	}

	props, err := ast.PropertiesOf(node)
	if err != nil {
		return nil, err
	}

	for _, prop := range props {
		if exportErr := e.exportProperty(obj, prop); exportErr != nil {
			return nil, exportErr
		}
	}

	return obj, nil
}

func (e *Exporter) exportProperty(obj *Object, prop ast.PropertyDescription) error {
	switch {
	case prop.ProvidesNodes:
		return e.exportChildren(obj, prop)
	case prop.IsReference:
		exportReference(obj, prop)

		return nil
	default:
		if obj.Attributes == nil {
			obj.Attributes = make(map[string]any)
		}

		obj.Attributes[prop.Name] = prop.Value

		return nil
	}
}

func (e *Exporter) exportChildren(obj *Object, prop ast.PropertyDescription) error {
	value := reflect.ValueOf(prop.Value)

	var children []*Object

	appendChild := func(child ast.Node) error {
		exported, err := e.exportNode(child)
		if err != nil {
			return err
		}

		children = append(children, exported)

		return nil
	}

	if prop.Multiplicity == ast.Many {
		children = make([]*Object, 0, value.Len())

		for idx := range value.Len() {
			element := value.Index(idx)
			if child, ok := element.Interface().(ast.Node); ok && !isNilNode(element) {
				if err := appendChild(child); err != nil {
					return err
				}
			}
		}
	} else if child, ok := prop.Value.(ast.Node); ok && !isNilNode(value) {
		if err := appendChild(child); err != nil {
			return err
		}
	}

	if children == nil && prop.Multiplicity != ast.Many {
		return nil
	}

	if obj.Children == nil {
		obj.Children = make(map[string][]*Object)
	}

	if children == nil {
		children = []*Object{}
	}

	obj.Children[prop.Name] = children

	return nil
}

// exportReference records the reference's target name; unresolved references
// export their name too, since resolution is lazy by contract.
func exportReference(obj *Object, prop ast.PropertyDescription) {
	value := reflect.ValueOf(prop.Value)
	if value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return
		}

		value = value.Elem()
	}

	nameField := value.FieldByName("Name")
	if !nameField.IsValid() {
		return
	}

	if obj.References == nil {
		obj.References = make(map[string]string)
	}

	obj.References[prop.Name] = nameField.String()
}

func isNilNode(value reflect.Value) bool {
	return (value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface) && value.IsNil()
}

func classifierNameOf(node ast.Node) string {
	t := reflect.TypeOf(node)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.Name()
}
