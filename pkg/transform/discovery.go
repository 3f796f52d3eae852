package transform

import (
	"fmt"
	"reflect"

	"github.com/sylva-dev/sylva/pkg/ast"
	"github.com/sylva-dev/sylva/pkg/parsing"
)

// The struct tag key marking a destination property as mapped from the
// source. The tag value is a dotted path into the source; an empty value
// defaults to the property's own name.
const mappedTagKey = "mapped"

// discoverChildren populates the destination node's declared properties,
// driven by introspection over the destination type. Lookup prefers a child
// mapping scoped to the destination type, then a global one, then a mapping
// synthesized from the property's `mapped` tag. Both the synthesized mapping
// and its absence are cached on the factory, so discovery for later
// instances of the same type is O(1) per property.
func (t *Transformer) discoverChildren(factory *NodeFactory, source any, dest ast.Node) error {
	destType := reflect.TypeOf(dest)

	props, err := ast.PropertiesOfType(destType)
	if err != nil {
		return err
	}

	for _, prop := range props {
		scopedKey := scopedChildKey(destType, prop.Name)

		child, found := factory.children[scopedKey]
		if !found {
			child, found = factory.children[prop.Name]
		}

		if !found {
			child = synthesizeChild(prop)
			factory.children[scopedKey] = child
		}

		if child == nil {
			continue
		}

		if applyErr := t.applyChild(child, prop, source, dest); applyErr != nil {
			return applyErr
		}
	}

	return nil
}

// applyChild fetches the raw source value and stores the transformed child
// or children on the destination, honoring the destination multiplicity.
func (t *Transformer) applyChild(child *ChildNodeFactory, prop ast.PropertyTypeDescription, source any, dest ast.Node) error {
	raw, err := child.get(source)
	if err != nil {
		return err
	}

	if prop.Multiplicity == ast.Many {
		items := sequenceOf(raw)
		children := make([]ast.Node, 0, len(items))

		elemType := prop.ValueType
		if elemType.Kind() == reflect.Slice || elemType.Kind() == reflect.Array {
			elemType = elemType.Elem()
		}

		for _, item := range items {
			node, transformErr := t.Transform(item, dest)
			if transformErr != nil {
				return transformErr
			}

			if node == nil {
				continue
			}

			if t.dropMisfitPlaceholder(node, prop.Name, elemType) {
				continue
			}

			children = append(children, node)
		}

		return child.set(dest, children)
	}

	node, err := t.Transform(raw, dest)
	if err != nil {
		return err
	}

	if node == nil || t.dropMisfitPlaceholder(node, prop.Name, prop.ValueType) {
		return child.set(dest, nil)
	}

	return child.set(dest, node)
}

// dropMisfitPlaceholder reports whether the node is a fallback placeholder
// that cannot live in the declared property type. The failing subtree is
// dropped instead of failing its parent; the Transform that produced the
// placeholder already recorded what went wrong.
func (t *Transformer) dropMisfitPlaceholder(node ast.Node, name string, target reflect.Type) bool {
	if reflect.TypeOf(node).AssignableTo(target) {
		return false
	}

	switch node.(type) {
	case *GenericNode, *GenericErrorNode:
	default:
		return false
	}

	t.addIssue(parsing.SeverityWarning,
		fmt.Sprintf("dropping placeholder from property %q: %v does not accept it", name, target),
		node.Position())

	return true
}

// synthesizeChild builds a child mapping from the property's `mapped` tag,
// or returns nil when the property does not participate in discovery.
func synthesizeChild(prop ast.PropertyTypeDescription) *ChildNodeFactory {
	if !prop.ProvidesNodes {
		return nil
	}

	path, ok := prop.Tag.Lookup(mappedTagKey)
	if !ok {
		return nil
	}

	if path == "" {
		path = prop.Name
	}

	accessor := compilePath(path)

	return &ChildNodeFactory{
		name: prop.Name,
		get:  accessor.get,
		set:  propertySetter(prop.Name),
	}
}

// sequenceOf views a raw source value as an ordered sequence: collections
// enumerate their elements, nil is empty, and a bare value is a sequence of
// one.
func sequenceOf(raw any) []any {
	if raw == nil {
		return nil
	}

	value := reflect.ValueOf(raw)

	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, 0, value.Len())

		for idx := range value.Len() {
			element := value.Index(idx)
			if (element.Kind() == reflect.Pointer || element.Kind() == reflect.Interface) && element.IsNil() {
				continue
			}

			items = append(items, element.Interface())
		}

		return items
	case reflect.Pointer, reflect.Interface:
		if value.IsNil() {
			return nil
		}
	}

	return []any{raw}
}

// propertySetter synthesizes a setter writing straight to the named
// destination property. For Many properties it always stores a sequence,
// empty rather than absent.
func propertySetter(name string) func(target ast.Node, child any) error {
	return func(target ast.Node, child any) error {
		value := reflect.ValueOf(target)
		for value.Kind() == reflect.Pointer {
			value = value.Elem()
		}

		field := value.FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("destination property %q is not writable on %T", name, target)
		}

		if child == nil {
			field.SetZero()

			return nil
		}

		if children, ok := child.([]ast.Node); ok {
			return setManyProperty(field, name, children)
		}

		childValue := reflect.ValueOf(child)
		if !childValue.Type().AssignableTo(field.Type()) {
			return fmt.Errorf("property %q: cannot assign %T", name, child)
		}

		field.Set(childValue)

		return nil
	}
}

func setManyProperty(field reflect.Value, name string, children []ast.Node) error {
	if field.Kind() != reflect.Slice {
		return fmt.Errorf("property %q: expected a slice destination, have %v", name, field.Type())
	}

	slice := reflect.MakeSlice(field.Type(), 0, len(children))
	elemType := field.Type().Elem()

	for _, child := range children {
		childValue := reflect.ValueOf(child)
		if !childValue.Type().AssignableTo(elemType) {
			return fmt.Errorf("property %q: cannot assign element %T", name, child)
		}

		slice = reflect.Append(slice, childValue)
	}

	field.Set(slice)

	return nil
}
