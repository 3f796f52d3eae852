package metamodel

import (
	"reflect"
	"time"

	"github.com/sylva-dev/sylva/pkg/ast"
)

// Primitive type names shared between schema producers and consumers.
const (
	PrimitiveString   = "String"
	PrimitiveInteger  = "Integer"
	PrimitiveReal     = "Real"
	PrimitiveBoolean  = "Boolean"
	PrimitiveDateTime = "DateTime"
)

// ExternalHandler supplies a pre-existing classifier for types that must not
// be redefined per consumer, such as the base node capability or shared
// built-in types.
type ExternalHandler interface {
	// CanHandle reports whether this handler owns the given type.
	CanHandle(t reflect.Type) bool
	// Classifier returns the pre-published classifier for the type.
	Classifier(t reflect.Type) *Classifier
}

// Builder walks a destination type hierarchy through property introspection
// and produces a Schema. It is a single-pass, order-insensitive builder:
// every structural problem is fatal, there is no partial-failure recovery.
type Builder struct {
	schema   *Schema
	byType   map[reflect.Type]*Classifier
	names    map[string]reflect.Type
	enums    map[reflect.Type]*Enumeration
	subtypes map[reflect.Type][]reflect.Type
	handlers []ExternalHandler
}

// NewBuilder creates a Builder for a schema with the given name. Handlers
// are consulted in order before any classifier is generated.
func NewBuilder(schemaName string, handlers ...ExternalHandler) *Builder {
	return &Builder{
		schema:   &Schema{Name: schemaName},
		byType:   make(map[reflect.Type]*Classifier),
		names:    make(map[string]reflect.Type),
		enums:    make(map[reflect.Type]*Enumeration),
		subtypes: make(map[reflect.Type][]reflect.Type),
		handlers: append([]ExternalHandler{builtinHandler{}}, handlers...),
	}
}

// RegisterEnumeration declares a named type as an enumeration attribute type.
func (b *Builder) RegisterEnumeration(t reflect.Type, name string, literals []string) *Builder {
	enum := &Enumeration{Name: name, Literals: literals}
	b.enums[t] = enum
	b.schema.Enumerations = append(b.schema.Enumerations, enum)

	return b
}

// DeclareSubtypes records that the given subtypes belong to the base type's
// hierarchy. Declared subtypes are reachable even when no property mentions
// them, mirroring subtype declarations in the external schema system.
func (b *Builder) DeclareSubtypes(base reflect.Type, subtypes ...reflect.Type) *Builder {
	b.subtypes[base] = append(b.subtypes[base], subtypes...)

	return b
}

// Build provides every root type, everything transitively reachable through
// property value types, and all declared subtypes, then returns the schema.
func (b *Builder) Build(roots ...reflect.Type) (*Schema, error) {
	for _, root := range roots {
		if _, err := b.Provide(root); err != nil {
			return nil, err
		}
	}

	return b.schema, nil
}

// Provide returns the classifier for a node type, generating it on first
// request. Externally handled types come back flagged External and are added
// to the schema once for name resolution.
func (b *Builder) Provide(t reflect.Type) (*Classifier, error) {
	key := canonicalType(t)

	if classifier, ok := b.byType[key]; ok {
		return classifier, nil
	}

	for _, handler := range b.handlers {
		if !handler.CanHandle(key) {
			continue
		}

		classifier := handler.Classifier(key)
		classifier.External = true

		if err := b.claimName(classifier.Name, key); err != nil {
			return nil, err
		}

		b.byType[key] = classifier
		b.schema.Classifiers = append(b.schema.Classifiers, classifier)

		return classifier, nil
	}

	return b.generate(key)
}

func (b *Builder) generate(key reflect.Type) (*Classifier, error) {
	classifier := &Classifier{Name: classifierName(key)}

	if err := b.claimName(classifier.Name, key); err != nil {
		return nil, err
	}

	// Register before recursing so self-referential types terminate.
	b.byType[key] = classifier
	b.schema.Classifiers = append(b.schema.Classifiers, classifier)

	if key.Kind() == reflect.Interface {
		classifier.Abstract = true

		return classifier, b.provideSubtypes(key)
	}

	if err := b.fillSuper(classifier, key); err != nil {
		return nil, err
	}

	props, err := ast.PropertiesOfType(key)
	if err != nil {
		return nil, err
	}

	for _, prop := range props {
		feature, featureErr := b.featureFor(classifier, prop)
		if featureErr != nil {
			return nil, featureErr
		}

		classifier.Features = append(classifier.Features, feature)
	}

	return classifier, b.provideSubtypes(key)
}

func (b *Builder) provideSubtypes(key reflect.Type) error {
	for _, sub := range b.subtypes[key] {
		if _, err := b.Provide(sub); err != nil {
			return err
		}
	}

	return nil
}

// fillSuper derives the super classifier from the first embedded node-like
// type other than the base node itself.
func (b *Builder) fillSuper(classifier *Classifier, key reflect.Type) error {
	structType := key
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	for idx := range structType.NumField() {
		field := structType.Field(idx)
		if !field.Anonymous || field.Type == reflect.TypeOf(ast.BaseNode{}) {
			continue
		}

		embedded := field.Type
		if embedded.Kind() != reflect.Pointer {
			embedded = reflect.PointerTo(embedded)
		}

		if !embedded.Implements(reflect.TypeOf((*ast.Node)(nil)).Elem()) {
			continue
		}

		super, err := b.Provide(embedded)
		if err != nil {
			return err
		}

		classifier.Super = super.Name

		return nil
	}

	return nil
}

func (b *Builder) featureFor(classifier *Classifier, prop ast.PropertyTypeDescription) (Feature, error) {
	feature := Feature{
		Name:     prop.Name,
		Optional: prop.Multiplicity == ast.Optional,
		Many:     prop.Multiplicity == ast.Many,
	}

	switch {
	case prop.ProvidesNodes:
		feature.Kind = FeatureContainment

		element := prop.ValueType
		if prop.Multiplicity == ast.Many {
			element = element.Elem()
		}

		target, err := b.Provide(element)
		if err != nil {
			return feature, err
		}

		feature.Type = target.Name
	case prop.IsReference:
		feature.Kind = FeatureReference

		target, err := b.Provide(referenceTarget(prop.ValueType))
		if err != nil {
			return feature, err
		}

		feature.Type = target.Name
	default:
		feature.Kind = FeatureAttribute

		name, err := b.attributeTypeName(classifier, prop)
		if err != nil {
			return feature, err
		}

		feature.Type = name
	}

	return feature, nil
}

func (b *Builder) attributeTypeName(classifier *Classifier, prop ast.PropertyTypeDescription) (string, error) {
	attrType := prop.ValueType
	if attrType.Kind() == reflect.Pointer {
		attrType = attrType.Elem()
	}

	if enum, ok := b.enums[attrType]; ok {
		return enum.Name, nil
	}

	if name, ok := primitiveName(attrType); ok {
		return name, nil
	}

	return "", &AttributeMappingError{Classifier: classifier.Name, Property: prop.Name, Type: prop.ValueType}
}

func (b *Builder) claimName(name string, t reflect.Type) error {
	if first, taken := b.names[name]; taken {
		return &DuplicateClassifierError{Name: name, First: first, Second: t}
	}

	b.names[name] = t

	return nil
}

// referenceTarget extracts the referred node type from a ReferenceByName
// instantiation through its referred field.
func referenceTarget(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if field, ok := t.FieldByName("referred"); ok {
		return field.Type
	}

	return t
}

// canonicalType normalizes struct node types to their pointer form, the form
// that implements Node.
func canonicalType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Struct {
		return reflect.PointerTo(t)
	}

	return t
}

// classifierName derives the externally visible name from the Go type name.
func classifierName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.Name()
}

func primitiveName(t reflect.Type) (string, bool) {
	if t == reflect.TypeOf(time.Time{}) {
		return PrimitiveDateTime, true
	}

	switch t.Kind() {
	case reflect.String:
		return PrimitiveString, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return PrimitiveInteger, true
	case reflect.Float32, reflect.Float64:
		return PrimitiveReal, true
	case reflect.Bool:
		return PrimitiveBoolean, true
	default:
		return "", false
	}
}

// builtinHandler maps the base node capability onto the shared pre-published
// Node classifier instead of redefining it per schema.
type builtinHandler struct{}

func (builtinHandler) CanHandle(t reflect.Type) bool {
	nodeIface := reflect.TypeOf((*ast.Node)(nil)).Elem()

	return t == nodeIface || t == reflect.TypeOf(&ast.BaseNode{})
}

func (builtinHandler) Classifier(reflect.Type) *Classifier {
	return &Classifier{Name: "Node", Abstract: true}
}
