package ast_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylva-dev/sylva/pkg/ast"
)

type comment struct {
	ast.BaseNode

	Text string
}

type declaration struct {
	ast.BaseNode

	Name string
}

func (d *declaration) GetName() string { return d.Name }

type compilationUnit struct {
	ast.BaseNode

	Name    string
	Decls   []*declaration
	Doc     *comment
	Payload []byte
	Tags    []string
	Hidden  string `ast:"-"`
}

type namedBase struct {
	ast.BaseNode

	Name string
}

type derivedDecl struct {
	namedBase

	Exported bool
}

type shadowingDecl struct {
	namedBase

	Name int
}

func TestPropertiesOfType(t *testing.T) {
	t.Parallel()

	props, err := ast.PropertiesOfType(reflect.TypeOf(&compilationUnit{}))
	require.NoError(t, err)

	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, p.Name)
	}

	assert.Equal(t, []string{"Name", "Decls", "Doc", "Payload", "Tags"}, names)

	byName := make(map[string]ast.PropertyTypeDescription, len(props))
	for _, p := range props {
		byName[p.Name] = p
	}

	assert.False(t, byName["Name"].ProvidesNodes)
	assert.Equal(t, ast.Singular, byName["Name"].Multiplicity)

	assert.True(t, byName["Decls"].ProvidesNodes)
	assert.Equal(t, ast.Many, byName["Decls"].Multiplicity)

	assert.True(t, byName["Doc"].ProvidesNodes)
	assert.Equal(t, ast.Optional, byName["Doc"].Multiplicity)

	// Byte payloads are data, not sequences.
	assert.False(t, byName["Payload"].ProvidesNodes)
	assert.Equal(t, ast.Singular, byName["Payload"].Multiplicity)

	assert.False(t, byName["Tags"].ProvidesNodes)
	assert.Equal(t, ast.Many, byName["Tags"].Multiplicity)
}

func TestPropertiesOfTypeIsIdempotent(t *testing.T) {
	t.Parallel()

	first, err := ast.PropertiesOfType(reflect.TypeOf(&compilationUnit{}))
	require.NoError(t, err)

	second, err := ast.PropertiesOfType(reflect.TypeOf(&compilationUnit{}))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPropertiesOfTypeIgnoreSet(t *testing.T) {
	t.Parallel()

	props, err := ast.PropertiesOfType(reflect.TypeOf(&compilationUnit{}), "Doc", "Tags")
	require.NoError(t, err)

	for _, p := range props {
		assert.NotEqual(t, "Doc", p.Name)
		assert.NotEqual(t, "Tags", p.Name)
	}
}

func TestPropertiesOfTypeInheritance(t *testing.T) {
	t.Parallel()

	props, err := ast.PropertiesOfType(reflect.TypeOf(&derivedDecl{}))
	require.NoError(t, err)

	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, p.Name)
	}

	assert.Equal(t, []string{"Name", "Exported"}, names)
}

func TestPropertiesOfTypeShadowedField(t *testing.T) {
	t.Parallel()

	props, err := ast.PropertiesOfType(reflect.TypeOf(&shadowingDecl{}))
	require.NoError(t, err)

	require.Len(t, props, 1)
	assert.Equal(t, "Name", props[0].Name)
	assert.Equal(t, reflect.TypeOf(0), props[0].ValueType)
}

func TestPropertiesOfTypeNotAStruct(t *testing.T) {
	t.Parallel()

	_, err := ast.PropertiesOfType(reflect.TypeOf(42))

	var introspectionErr *ast.IntrospectionError

	require.ErrorAs(t, err, &introspectionErr)
}

type withBareInterface struct {
	ast.BaseNode

	Anything any
}

type withNodeMap struct {
	ast.BaseNode

	Index map[string]*declaration
}

type withFunc struct {
	ast.BaseNode

	Callback func()
}

func TestPropertiesOfTypeUnclassifiable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		nodeType reflect.Type
		property string
	}{
		{"bare_interface", reflect.TypeOf(&withBareInterface{}), "Anything"},
		{"node_valued_map", reflect.TypeOf(&withNodeMap{}), "Index"},
		{"func_field", reflect.TypeOf(&withFunc{}), "Callback"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ast.PropertiesOfType(tc.nodeType)

			var introspectionErr *ast.IntrospectionError

			require.ErrorAs(t, err, &introspectionErr)
			assert.Equal(t, tc.property, introspectionErr.Property)
		})
	}
}

type foreignToken struct {
	Kind string
}

type withForeign struct {
	ast.BaseNode

	Tokens []*foreignToken
}

func TestMarkNodeType(t *testing.T) {
	t.Parallel()

	ast.MarkNodeType(reflect.TypeOf(&foreignToken{}))

	props, err := ast.PropertiesOfType(reflect.TypeOf(&withForeign{}))
	require.NoError(t, err)

	require.Len(t, props, 1)
	assert.True(t, props[0].ProvidesNodes)
	assert.Equal(t, ast.Many, props[0].Multiplicity)
}

type withReference struct {
	ast.BaseNode

	Target ast.ReferenceByName[*declaration]
}

func TestReferenceClassification(t *testing.T) {
	t.Parallel()

	props, err := ast.PropertiesOfType(reflect.TypeOf(&withReference{}))
	require.NoError(t, err)

	require.Len(t, props, 1)
	assert.True(t, props[0].IsReference)
	assert.False(t, props[0].ProvidesNodes)
	assert.Equal(t, ast.Optional, props[0].Multiplicity)
}

func TestPropertiesOf(t *testing.T) {
	t.Parallel()

	doc := &comment{Text: "top"}
	unit := &compilationUnit{
		Name:  "main",
		Decls: []*declaration{{Name: "a"}, {Name: "b"}},
		Doc:   doc,
	}

	props, err := ast.PropertiesOf(unit)
	require.NoError(t, err)

	byName := make(map[string]any, len(props))
	for _, p := range props {
		byName[p.Name] = p.Value
	}

	assert.Equal(t, "main", byName["Name"])
	assert.Same(t, doc, byName["Doc"])
	assert.Len(t, byName["Decls"], 2)
}

func TestPropertiesOfNilNode(t *testing.T) {
	t.Parallel()

	props, err := ast.PropertiesOf(nil)
	require.NoError(t, err)
	assert.Empty(t, props)

	var unit *compilationUnit

	props, err = ast.PropertiesOf(unit)
	require.NoError(t, err)
	assert.Empty(t, props)
}
