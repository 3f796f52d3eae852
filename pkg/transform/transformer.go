// Package transform implements the generic tree-to-tree transformation
// engine: per-source-type factories, reflection-discovered child mappings,
// multiplicity-aware recursive descent, and graceful degradation to
// placeholder nodes when the fallback is enabled.
package transform

import (
	"fmt"
	"reflect"

	"github.com/sylva-dev/sylva/pkg/ast"
	"github.com/sylva-dev/sylva/pkg/parsing"
)

// Transformer converts trees of arbitrary source shape into trees of declared
// destination shapes. A Transformer owns its factory registry and discovery
// caches; it must not be shared across goroutines without external locking,
// since cache population is not synchronized.
type Transformer struct {
	factoriesByType map[reflect.Type]*NodeFactory
	factoriesByTag  map[string]*NodeFactory
	capabilities    []capabilityEntry
	resolved        map[reflect.Type]*NodeFactory
	allowGeneric    bool
	issues          []parsing.Issue
	metrics         *transformMetrics
}

type capabilityEntry struct {
	iface   reflect.Type
	factory *NodeFactory
}

// Option configures a Transformer at construction time.
type Option func(*Transformer)

// WithoutFallback disables placeholder production: unmapped source types and
// constructor failures become fatal errors instead of placeholder nodes.
func WithoutFallback() Option {
	return func(t *Transformer) {
		t.allowGeneric = false
	}
}

// New creates an empty Transformer with the placeholder fallback enabled.
func New(opts ...Option) *Transformer {
	t := &Transformer{
		factoriesByType: make(map[reflect.Type]*NodeFactory),
		factoriesByTag:  make(map[string]*NodeFactory),
		resolved:        make(map[reflect.Type]*NodeFactory),
		allowGeneric:    true,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Issues returns the diagnostics accumulated by this Transformer so far.
func (t *Transformer) Issues() []parsing.Issue {
	return t.issues
}

// ClearIssues discards accumulated diagnostics, typically between independent
// transformations sharing one registry.
func (t *Transformer) ClearIssues() {
	t.issues = nil
}

func (t *Transformer) addIssue(severity parsing.IssueSeverity, message string, pos *ast.Position) {
	t.issues = append(t.issues, parsing.TranslationIssue(severity, message, pos))
}

// registerFactory associates a source type with a factory. The last
// registration for the same exact type wins. The resolution cache is
// invalidated because a new registration can change nearest-factory answers.
func (t *Transformer) registerFactory(sourceType reflect.Type, factory *NodeFactory) {
	t.factoriesByType[sourceType] = factory
	t.resolved = make(map[reflect.Type]*NodeFactory)
}

func (t *Transformer) registerCapability(iface reflect.Type, factory *NodeFactory) {
	t.capabilities = append(t.capabilities, capabilityEntry{iface: iface, factory: factory})
	t.resolved = make(map[reflect.Type]*NodeFactory)
}

// RegisterTagFactory registers a factory for Tagged source values carrying
// the given type tag. Tag dispatch is tried before type dispatch.
func (t *Transformer) RegisterTagFactory(tag string, construct Constructor) *NodeFactory {
	factory := newNodeFactory(nil, construct)
	t.factoriesByTag[tag] = factory

	return factory
}

// Transform converts one source value into a destination node, recursively
// descending through discovered children. A nil source yields a nil node.
// The parent link of the produced node is set to parent in-line, during
// construction.
func (t *Transformer) Transform(source any, parent ast.Node) (ast.Node, error) {
	if source == nil {
		return nil, nil
	}

	value := reflect.ValueOf(source)
	if (value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface) && value.IsNil() {
		return nil, nil
	}

	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		return nil, &CollectionTransformError{Type: value.Type()}
	}

	factory := t.factoryFor(source, value.Type())
	if factory == nil {
		return t.handleUnmapped(source, value.Type(), parent)
	}

	node, err := t.invokeConstructor(factory, source)
	if err != nil {
		return t.handleConstructorFailure(err, source, value.Type(), parent)
	}

	if node == nil {
		return nil, nil
	}

	if !factory.skipChildren {
		if discoverErr := t.discoverChildren(factory, source, node); discoverErr != nil {
			return nil, discoverErr
		}
	}

	if factory.finalizer != nil {
		factory.finalizer(node)
	}

	attachOrigin(node, source)
	node.SetParent(parent)
	t.metrics.nodeTransformed()

	return node, nil
}

// factoryFor resolves the nearest factory for a source value: tag dispatch
// for Tagged sources, then exact type, then embedded (anonymous) types
// breadth-first, then capability interfaces in registration order. The
// answer, including "no factory", is cached per concrete type.
func (t *Transformer) factoryFor(source any, sourceType reflect.Type) *NodeFactory {
	if tagged, ok := source.(Tagged); ok {
		if factory, found := t.factoriesByTag[tagged.TypeTag()]; found {
			return factory
		}
	}

	if factory, found := t.resolved[sourceType]; found {
		return factory
	}

	factory := t.resolveByType(sourceType)
	t.resolved[sourceType] = factory

	return factory
}

func (t *Transformer) resolveByType(sourceType reflect.Type) *NodeFactory {
	// Breadth-first over the embedded-type chain: current type first, then
	// direct embedded types, then theirs.
	queue := []reflect.Type{sourceType}
	seen := map[reflect.Type]bool{sourceType: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if factory, ok := t.factoriesByType[current]; ok {
			return factory
		}

		for _, embedded := range embeddedTypes(current) {
			if !seen[embedded] {
				seen[embedded] = true
				queue = append(queue, embedded)
			}
		}
	}

	for _, entry := range t.capabilities {
		if sourceType.Implements(entry.iface) {
			return entry.factory
		}
	}

	return nil
}

// embeddedTypes returns the Go analog of a type's direct supertypes: the
// types of its anonymous embedded fields, in both pointer and value form.
// Factories register under pointer types, so a value embed must surface its
// pointer form for lookup to reach the supertype factory.
func embeddedTypes(t reflect.Type) []reflect.Type {
	structType := t
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	if structType.Kind() != reflect.Struct {
		return nil
	}

	var embedded []reflect.Type

	for idx := range structType.NumField() {
		field := structType.Field(idx)
		if !field.Anonymous {
			continue
		}

		embedded = append(embedded, field.Type)

		if field.Type.Kind() == reflect.Pointer {
			embedded = append(embedded, field.Type.Elem())
		} else {
			embedded = append(embedded, reflect.PointerTo(field.Type))
		}
	}

	return embedded
}

func (t *Transformer) handleUnmapped(source any, sourceType reflect.Type, parent ast.Node) (ast.Node, error) {
	if !t.allowGeneric {
		return nil, &UnmappedNodeError{Type: sourceType}
	}

	placeholder := newGenericNode(sourceType, source, parent)
	t.addIssue(parsing.SeverityInfo, fmt.Sprintf("source node not mapped: %v", sourceType), placeholder.Position())
	t.metrics.placeholderProduced()

	return placeholder, nil
}

func (t *Transformer) handleConstructorFailure(err error, source any, sourceType reflect.Type, parent ast.Node) (ast.Node, error) {
	failure := &ConstructorFailure{SourceType: sourceType, Err: err}

	if !t.allowGeneric {
		return nil, failure
	}

	placeholder := newGenericErrorNode(failure, source, parent)
	t.addIssue(parsing.SeverityError, failure.Error(), placeholder.Position())
	t.metrics.failureIsolated()

	return placeholder, nil
}

// invokeConstructor runs the factory constructor, converting panics into
// errors so a single broken recipe cannot take down a whole transformation
// when the fallback is enabled.
func (t *Transformer) invokeConstructor(factory *NodeFactory, source any) (node ast.Node, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("constructor panicked: %v", recovered)
		}
	}()

	node, err = factory.construct(source, t)

	return normalizeNode(node), err
}
