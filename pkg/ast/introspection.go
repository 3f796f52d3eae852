package ast

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Multiplicity describes how many values a property holds.
type Multiplicity int

// Multiplicity constants.
const (
	Singular Multiplicity = iota
	Optional
	Many
)

func (m Multiplicity) String() string {
	switch m {
	case Singular:
		return "singular"
	case Optional:
		return "optional"
	case Many:
		return "many"
	default:
		return "unknown"
	}
}

// PropertyTypeDescription describes one structural property of a node type:
// its name, whether its values are themselves nodes, and its multiplicity.
// Derived purely from the declared type, never from instances.
type PropertyTypeDescription struct {
	// Name is the property name, unique within the type.
	Name string
	// ProvidesNodes reports whether the property values are tree nodes.
	ProvidesNodes bool
	// IsReference reports whether the property is a non-owning ReferenceByName.
	IsReference bool
	// Multiplicity is Singular, Optional, or Many.
	Multiplicity Multiplicity
	// ValueType is the declared Go type of the property.
	ValueType reflect.Type
	// Tag is the declaring field's struct tag, carrying mapping markers.
	Tag reflect.StructTag

	index []int
}

// PropertyDescription is a PropertyTypeDescription with the value resolved
// from a concrete node instance.
type PropertyDescription struct {
	PropertyTypeDescription

	Value any
}

// IntrospectionError reports that a property's node-or-data classification
// cannot be determined from static type information.
type IntrospectionError struct {
	Type     reflect.Type
	Property string
	Reason   string
}

func (e *IntrospectionError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("introspection of %v: %s", e.Type, e.Reason)
	}

	return fmt.Sprintf("introspection of %v, property %q: %s", e.Type, e.Property, e.Reason)
}

// The struct tag key controlling introspection. `ast:"-"` hides a field from
// introspection entirely.
const tagKey = "ast"

var nodeInterfaceType = reflect.TypeOf((*Node)(nil)).Elem()

// foreignNodeTypes holds types explicitly tagged as node-like even though
// they do not embed BaseNode. Escape hatch for external node types.
var foreignNodeTypes sync.Map

// MarkNodeType registers t as node-like for classification purposes. Use it
// for foreign node types that cannot embed BaseNode.
func MarkNodeType(t reflect.Type) {
	foreignNodeTypes.Store(t, true)
}

// isNodeLike reports whether values of t are tree nodes: t implements Node
// or was registered through MarkNodeType.
func isNodeLike(t reflect.Type) bool {
	if t.Implements(nodeInterfaceType) {
		return true
	}

	_, marked := foreignNodeTypes.Load(t)

	return marked
}

// propertyCache memoizes the unfiltered property list per node type.
var propertyCache sync.Map

// PropertiesOfType returns the ordered structural properties declared by the
// given node type. The type may be a struct or a pointer to one. Inherited
// (embedded) properties appear exactly once, at the position of the embedded
// declaration; a shadowed embedded field is not reported. Names listed in
// ignore are filtered out, which callers use to break loops on derived
// properties during generic walks.
func PropertiesOfType(t reflect.Type, ignore ...string) ([]PropertyTypeDescription, error) {
	structType := t
	for structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	if structType.Kind() != reflect.Struct {
		return nil, &IntrospectionError{Type: t, Reason: "not a struct type"}
	}

	if cached, ok := propertyCache.Load(structType); ok {
		return filterProperties(cached.([]PropertyTypeDescription), ignore), nil
	}

	props, err := computeProperties(structType)
	if err != nil {
		return nil, err
	}

	propertyCache.Store(structType, props)

	return filterProperties(props, ignore), nil
}

// PropertiesOf returns the properties of a concrete node with values
// resolved. Same order and classification as PropertiesOfType.
func PropertiesOf(node Node, ignore ...string) ([]PropertyDescription, error) {
	if node == nil {
		return nil, nil
	}

	value := reflect.ValueOf(node)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil
		}

		value = value.Elem()
	}

	typeProps, err := PropertiesOfType(value.Type(), ignore...)
	if err != nil {
		return nil, err
	}

	props := make([]PropertyDescription, 0, len(typeProps))

	for _, tp := range typeProps {
		field, fieldErr := value.FieldByIndexErr(tp.index)
		if fieldErr != nil {
			return nil, &IntrospectionError{Type: value.Type(), Property: tp.Name, Reason: fieldErr.Error()}
		}

		props = append(props, PropertyDescription{
			PropertyTypeDescription: tp,
			Value:                   field.Interface(),
		})
	}

	return props, nil
}

func filterProperties(props []PropertyTypeDescription, ignore []string) []PropertyTypeDescription {
	if len(ignore) == 0 {
		return props
	}

	kept := make([]PropertyTypeDescription, 0, len(props))

	for _, p := range props {
		if !slices.Contains(ignore, p.Name) {
			kept = append(kept, p)
		}
	}

	return kept
}

func computeProperties(structType reflect.Type) ([]PropertyTypeDescription, error) {
	fields := reflect.VisibleFields(structType)
	props := make([]PropertyTypeDescription, 0, len(fields))

	for _, field := range fields {
		if field.Anonymous || field.PkgPath != "" {
			continue
		}

		if tag, ok := field.Tag.Lookup(tagKey); ok && tagName(tag) == "-" {
			continue
		}

		desc, err := classifyField(structType, field)
		if err != nil {
			return nil, err
		}

		props = append(props, desc)
	}

	return props, nil
}

// tagName returns the first comma-separated element of a struct tag value.
func tagName(tag string) string {
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		return tag[:idx]
	}

	return tag
}

// classifyField determines multiplicity and node-or-data classification for
// one declared field, using static type information only.
func classifyField(owner reflect.Type, field reflect.StructField) (PropertyTypeDescription, error) {
	desc := PropertyTypeDescription{
		Name:      field.Name,
		ValueType: field.Type,
		Tag:       field.Tag,
		index:     field.Index,
	}

	fieldType := field.Type

	if isReferenceType(fieldType) {
		desc.IsReference = true
		desc.Multiplicity = Optional

		return desc, nil
	}

	switch fieldType.Kind() {
	case reflect.Slice, reflect.Array:
		if fieldType.Elem().Kind() == reflect.Uint8 {
			// Byte payloads are data, not element sequences.
			desc.Multiplicity = Singular

			return desc, nil
		}

		desc.Multiplicity = Many

		providesNodes, err := classifyElement(owner, field.Name, fieldType.Elem())
		if err != nil {
			return desc, err
		}

		desc.ProvidesNodes = providesNodes

		return desc, nil
	case reflect.Pointer, reflect.Interface:
		desc.Multiplicity = Optional

		providesNodes, err := classifyElement(owner, field.Name, fieldType)
		if err != nil {
			return desc, err
		}

		desc.ProvidesNodes = providesNodes

		return desc, nil
	case reflect.Map:
		if isNodeLike(fieldType.Elem()) {
			return desc, &IntrospectionError{
				Type:     owner,
				Property: field.Name,
				Reason:   "node-valued maps are not supported",
			}
		}

		desc.Multiplicity = Singular

		return desc, nil
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return desc, &IntrospectionError{
			Type:     owner,
			Property: field.Name,
			Reason:   fmt.Sprintf("cannot classify %v field", fieldType.Kind()),
		}
	default:
		desc.Multiplicity = Singular

		return desc, nil
	}
}

// classifyElement decides whether one element type provides nodes. Interface
// types that neither embed Node nor were registered through MarkNodeType are
// undecidable and rejected.
func classifyElement(owner reflect.Type, property string, elem reflect.Type) (bool, error) {
	if isNodeLike(elem) {
		return true, nil
	}

	if elem.Kind() == reflect.Interface {
		return false, &IntrospectionError{
			Type:     owner,
			Property: property,
			Reason:   fmt.Sprintf("interface type %v is neither a node nor marked as one", elem),
		}
	}

	if elem.Kind() == reflect.Pointer && elem.Elem().Kind() == reflect.Struct {
		// A pointer to a struct that is not a node is optional data.
		return false, nil
	}

	return false, nil
}

var referenceTypePrefix = "ReferenceByName["

// isReferenceType reports whether t is (a pointer to) an instantiation of
// ReferenceByName.
func isReferenceType(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	return t.PkgPath() == reflect.TypeOf(BaseNode{}).PkgPath() &&
		strings.HasPrefix(t.Name(), referenceTypePrefix)
}
