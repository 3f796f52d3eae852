package transform

import (
	"fmt"
	"reflect"

	"github.com/sylva-dev/sylva/pkg/ast"
)

// Constructor builds one destination node from one source value. Returning a
// nil node means "this source maps to nothing" and is not an error.
type Constructor func(source any, t *Transformer) (ast.Node, error)

// Finalizer runs after a node has been fully populated with children.
type Finalizer func(node ast.Node)

// Tagged is implemented by source values whose variants share a single Go
// type distinguished by a tag, such as foreign parse-tree wrappers. Factories
// registered with RegisterTagFactory dispatch on the tag instead of the type.
type Tagged interface {
	TypeTag() string
}

// NodeFactory is a registered recipe: a constructor, explicit child mappings,
// an optional finalizer, and a flag to skip automatic child discovery.
// Discovered child mappings are memoized on the factory on first use.
type NodeFactory struct {
	sourceType   reflect.Type
	construct    Constructor
	children     map[string]*ChildNodeFactory
	finalizer    Finalizer
	skipChildren bool
}

// ChildNodeFactory is a getter/setter pair for one destination property: the
// getter extracts the raw child value (possibly a collection) from the
// source, the setter stores the transformed child or children on the target.
// The name is used for diagnostics.
type ChildNodeFactory struct {
	name string
	get  func(source any) (any, error)
	set  func(target ast.Node, child any) error
}

// NewChildNodeFactory builds an explicit child mapping.
func NewChildNodeFactory(name string, getter func(source any) (any, error), setter func(target ast.Node, child any) error) *ChildNodeFactory {
	return &ChildNodeFactory{name: name, get: getter, set: setter}
}

// WithChild registers an explicit child mapping under the property name,
// shared by every destination type with that property.
func (f *NodeFactory) WithChild(child *ChildNodeFactory) *NodeFactory {
	f.children[child.name] = child

	return f
}

// WithChildFor registers a child mapping scoped to one destination type. A
// scoped mapping is preferred over a same-named global one when the
// destination node is of that type.
func (f *NodeFactory) WithChildFor(destType reflect.Type, child *ChildNodeFactory) *NodeFactory {
	f.children[scopedChildKey(destType, child.name)] = child

	return f
}

// WithChildPath maps the named destination property from an explicit dotted
// source path, overriding any `mapped` tag on the property.
func (f *NodeFactory) WithChildPath(name, path string) *NodeFactory {
	accessor := compilePath(path)

	f.children[name] = &ChildNodeFactory{
		name: name,
		get:  accessor.get,
		set:  propertySetter(name),
	}

	return f
}

// WithFinalizer sets the post-construction callback, invoked once the node
// and all its children are in place.
func (f *NodeFactory) WithFinalizer(fn Finalizer) *NodeFactory {
	f.finalizer = fn

	return f
}

// SkipChildren disables automatic child discovery for this factory. The
// constructor is then fully responsible for the subtree.
func (f *NodeFactory) SkipChildren() *NodeFactory {
	f.skipChildren = true

	return f
}

func newNodeFactory(sourceType reflect.Type, construct Constructor) *NodeFactory {
	return &NodeFactory{
		sourceType: sourceType,
		construct:  construct,
		children:   make(map[string]*ChildNodeFactory),
	}
}

// scopedChildKey builds the lookup key for a (destination type, property)
// scoped child registration.
func scopedChildKey(destType reflect.Type, name string) string {
	for destType.Kind() == reflect.Pointer {
		destType = destType.Elem()
	}

	return destType.String() + "#" + name
}

// RegisterNodeFactory registers a typed constructor for source type S. The
// last registration for the same exact type wins. The factory also serves
// source types that embed S: the embedded value is extracted and passed to
// the constructor, the Go analog of dispatching a subtype to a supertype
// factory.
func RegisterNodeFactory[S any, T ast.Node](t *Transformer, construct func(source S, tr *Transformer) (T, error)) *NodeFactory {
	sourceType := reflect.TypeOf((*S)(nil)).Elem()

	factory := newNodeFactory(sourceType, func(source any, tr *Transformer) (ast.Node, error) {
		typed, ok := source.(S)
		if !ok {
			extracted, found := embeddedValue(reflect.ValueOf(source), sourceType)
			if !found {
				return nil, fmt.Errorf("factory for %v received %T", sourceType, source)
			}

			typed, ok = extracted.(S)
			if !ok {
				return nil, fmt.Errorf("factory for %v received %T", sourceType, source)
			}
		}

		node, err := construct(typed, tr)
		if err != nil {
			return nil, err
		}

		return normalizeNode(node), nil
	})

	t.registerFactory(sourceType, factory)

	return factory
}

// embeddedValue finds the value of the embedded (anonymous) field of the
// target type inside a source value, walking the embedding chain depth-first.
func embeddedValue(value reflect.Value, target reflect.Type) (any, bool) {
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, false
		}

		value = value.Elem()
	}

	if value.Type() == target {
		return value.Interface(), true
	}

	if value.Kind() != reflect.Struct {
		return nil, false
	}

	for idx := range value.NumField() {
		field := value.Type().Field(idx)
		if !field.Anonymous {
			continue
		}

		fieldValue := value.Field(idx)

		if fieldValue.Type() == target {
			return fieldValue.Interface(), true
		}

		if target.Kind() == reflect.Pointer && fieldValue.Type() == target.Elem() && fieldValue.CanAddr() {
			return fieldValue.Addr().Interface(), true
		}

		if extracted, found := embeddedValue(fieldValue, target); found {
			return extracted, true
		}
	}

	return nil, false
}

// RegisterTrivialNodeFactory registers a one-to-one mapping from S to the
// default-constructed destination type T, populated entirely through child
// discovery. T must be a pointer to a struct; registration panics otherwise,
// since no instance could ever be constructed.
func RegisterTrivialNodeFactory[S any, T ast.Node](t *Transformer) *NodeFactory {
	destType := reflect.TypeOf((*T)(nil)).Elem()
	if destType.Kind() != reflect.Pointer || destType.Elem().Kind() != reflect.Struct {
		panic(&RegistrationError{Type: destType, Reason: "destination type is not a pointer to a struct and cannot be default-constructed"})
	}

	return RegisterNodeFactory(t, func(_ S, _ *Transformer) (T, error) {
		node, ok := reflect.New(destType.Elem()).Interface().(T)
		if !ok {
			return node, &RegistrationError{Type: destType, Reason: "default-constructed value does not satisfy the destination type"}
		}

		return node, nil
	})
}

// RegisterIdentityTransformation registers a passthrough for nodes already in
// final form: the source instance is reused as-is and its subtree is not
// re-processed.
func RegisterIdentityTransformation[S ast.Node](t *Transformer) *NodeFactory {
	return RegisterNodeFactory(t, func(source S, _ *Transformer) (S, error) {
		return source, nil
	}).SkipChildren()
}

// RegisterCapabilityFactory registers a factory for every source implementing
// the capability interface I. Capability factories are tried after exact and
// embedded-type matches, in registration order.
func RegisterCapabilityFactory[I any](t *Transformer, construct func(source I, tr *Transformer) (ast.Node, error)) *NodeFactory {
	ifaceType := reflect.TypeOf((*I)(nil)).Elem()
	if ifaceType.Kind() != reflect.Interface {
		panic(&RegistrationError{Type: ifaceType, Reason: "capability registration requires an interface type"})
	}

	factory := newNodeFactory(ifaceType, func(source any, tr *Transformer) (ast.Node, error) {
		typed, ok := source.(I)
		if !ok {
			return nil, fmt.Errorf("capability factory for %v received %T", ifaceType, source)
		}

		return construct(typed, tr)
	})

	t.registerCapability(ifaceType, factory)

	return factory
}

// normalizeNode collapses typed nil pointers into untyped nil so that "maps
// to nothing" behaves uniformly.
func normalizeNode(node ast.Node) ast.Node {
	if node == nil {
		return nil
	}

	value := reflect.ValueOf(node)
	if value.Kind() == reflect.Pointer && value.IsNil() {
		return nil
	}

	return node
}
