package metamodel_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylva-dev/sylva/pkg/ast"
	"github.com/sylva-dev/sylva/pkg/metamodel"
)

type expr interface {
	ast.Node
	expr()
}

type literal struct {
	ast.BaseNode

	Value float64
}

func (*literal) expr() {}

type binary struct {
	ast.BaseNode

	Operator string
	Left     expr
	Right    expr
}

func (*binary) expr() {}

type program struct {
	ast.BaseNode

	Name       string
	Statements []expr
	CreatedAt  time.Time
}

func buildSchema(t *testing.T) *metamodel.Schema {
	t.Helper()

	builder := metamodel.NewBuilder("calc")
	builder.DeclareSubtypes(
		reflect.TypeOf((*expr)(nil)).Elem(),
		reflect.TypeOf(&literal{}),
		reflect.TypeOf(&binary{}),
	)

	schema, err := builder.Build(reflect.TypeOf(&program{}))
	require.NoError(t, err)

	return schema
}

func TestBuilderGeneratesClassifiers(t *testing.T) {
	t.Parallel()

	schema := buildSchema(t)

	assert.Equal(t, "calc", schema.Name)

	prog := schema.ClassifierNamed("program")
	require.NotNil(t, prog)

	name := prog.FeatureNamed("Name")
	require.NotNil(t, name)
	assert.Equal(t, metamodel.FeatureAttribute, name.Kind)
	assert.Equal(t, metamodel.PrimitiveString, name.Type)

	statements := prog.FeatureNamed("Statements")
	require.NotNil(t, statements)
	assert.Equal(t, metamodel.FeatureContainment, statements.Kind)
	assert.Equal(t, "expr", statements.Type)
	assert.True(t, statements.Many)

	created := prog.FeatureNamed("CreatedAt")
	require.NotNil(t, created)
	assert.Equal(t, metamodel.PrimitiveDateTime, created.Type)
}

func TestBuilderAbstractInterfaceWithSubtypes(t *testing.T) {
	t.Parallel()

	schema := buildSchema(t)

	exprClassifier := schema.ClassifierNamed("expr")
	require.NotNil(t, exprClassifier)
	assert.True(t, exprClassifier.Abstract)

	require.NotNil(t, schema.ClassifierNamed("literal"))
	require.NotNil(t, schema.ClassifierNamed("binary"))

	binaryClassifier := schema.ClassifierNamed("binary")
	left := binaryClassifier.FeatureNamed("Left")
	require.NotNil(t, left)
	assert.Equal(t, metamodel.FeatureContainment, left.Kind)
	assert.Equal(t, "expr", left.Type)
	assert.True(t, left.Optional)
}

type baseDecl struct {
	ast.BaseNode

	Name string
}

type funcDecl struct {
	baseDecl

	Arity int
}

func TestBuilderSuperFromEmbedding(t *testing.T) {
	t.Parallel()

	builder := metamodel.NewBuilder("decls")

	schema, err := builder.Build(reflect.TypeOf(&funcDecl{}))
	require.NoError(t, err)

	fn := schema.ClassifierNamed("funcDecl")
	require.NotNil(t, fn)
	assert.Equal(t, "baseDecl", fn.Super)
	require.NotNil(t, schema.ClassifierNamed("baseDecl"))
}

type severity string

type annotated struct {
	ast.BaseNode

	Level severity
}

func TestBuilderEnumerations(t *testing.T) {
	t.Parallel()

	builder := metamodel.NewBuilder("annotations")
	builder.RegisterEnumeration(reflect.TypeOf(severity("")), "Severity", []string{"info", "warn", "error"})

	schema, err := builder.Build(reflect.TypeOf(&annotated{}))
	require.NoError(t, err)

	require.Len(t, schema.Enumerations, 1)
	assert.Equal(t, "Severity", schema.Enumerations[0].Name)

	level := schema.ClassifierNamed("annotated").FeatureNamed("Level")
	require.NotNil(t, level)
	assert.Equal(t, "Severity", level.Type)
}

type withUnmappable struct {
	ast.BaseNode

	Ratio complex128
}

func TestBuilderUnmappedAttribute(t *testing.T) {
	t.Parallel()

	builder := metamodel.NewBuilder("bad")

	_, err := builder.Build(reflect.TypeOf(&withUnmappable{}))

	var mappingErr *metamodel.AttributeMappingError

	require.ErrorAs(t, err, &mappingErr)
	assert.Equal(t, "withUnmappable", mappingErr.Classifier)
	assert.Equal(t, "Ratio", mappingErr.Property)
}

type collidingHandler struct{}

func (collidingHandler) CanHandle(t reflect.Type) bool {
	return t == reflect.TypeOf(&timestamp{})
}

func (collidingHandler) Classifier(reflect.Type) *metamodel.Classifier {
	return &metamodel.Classifier{Name: "event"}
}

func TestBuilderDuplicateClassifier(t *testing.T) {
	t.Parallel()

	builder := metamodel.NewBuilder("dup", collidingHandler{})

	_, err := builder.Build(reflect.TypeOf(&event{}))

	var dupErr *metamodel.DuplicateClassifierError

	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "event", dupErr.Name)
}

type externalTime struct{}

func (externalTime) CanHandle(t reflect.Type) bool {
	return t == reflect.TypeOf(&timestamp{})
}

func (externalTime) Classifier(reflect.Type) *metamodel.Classifier {
	return &metamodel.Classifier{Name: "Timestamp"}
}

type timestamp struct {
	ast.BaseNode
}

type event struct {
	ast.BaseNode

	At *timestamp
}

func TestBuilderExternalHandler(t *testing.T) {
	t.Parallel()

	builder := metamodel.NewBuilder("events", externalTime{})

	schema, err := builder.Build(reflect.TypeOf(&event{}))
	require.NoError(t, err)

	ts := schema.ClassifierNamed("Timestamp")
	require.NotNil(t, ts)
	assert.True(t, ts.External)
	assert.Empty(t, ts.Features)

	at := schema.ClassifierNamed("event").FeatureNamed("At")
	require.NotNil(t, at)
	assert.Equal(t, "Timestamp", at.Type)
}

type withNodeField struct {
	ast.BaseNode

	Child ast.Node
}

func TestBuilderBuiltinNodeClassifier(t *testing.T) {
	t.Parallel()

	builder := metamodel.NewBuilder("generic")

	schema, err := builder.Build(reflect.TypeOf(&withNodeField{}))
	require.NoError(t, err)

	node := schema.ClassifierNamed("Node")
	require.NotNil(t, node)
	assert.True(t, node.Abstract)
	assert.True(t, node.External)
}
