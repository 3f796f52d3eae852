package export_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylva-dev/sylva/pkg/ast"
	"github.com/sylva-dev/sylva/pkg/export"
	"github.com/sylva-dev/sylva/pkg/metamodel"
	"github.com/sylva-dev/sylva/pkg/parsing"
)

type entry struct {
	ast.BaseNode

	Name string
}

func (e *entry) GetName() string { return e.Name }

type catalog struct {
	ast.BaseNode

	Title   string
	Entries []*entry
	Note    *entry
	Ref     ast.ReferenceByName[*entry]
}

func catalogSchema(t *testing.T) *metamodel.Schema {
	t.Helper()

	schema, err := metamodel.NewBuilder("catalog").Build(reflect.TypeOf(&catalog{}))
	require.NoError(t, err)

	return schema
}

func sampleCatalog() *catalog {
	root := &catalog{
		Title: "tools",
		Entries: []*entry{
			{Name: "hammer"},
			{Name: "saw"},
		},
	}
	root.Ref.Name = "hammer"
	root.SetPosition(ast.NewPosition(1, 1, 0, 4, 1, 40))

	return root
}

func TestExport(t *testing.T) {
	t.Parallel()

	schema := catalogSchema(t)
	doc, err := export.NewExporter(schema).Export(sampleCatalog(), []parsing.Issue{
		parsing.TranslationIssue(parsing.SeverityWarning, "minor", nil),
	})
	require.NoError(t, err)

	assert.Equal(t, "catalog", doc.Schema)
	assert.Equal(t, export.DocumentVersion, doc.Version)
	require.Len(t, doc.Issues, 1)

	root := doc.Root
	require.NotNil(t, root)
	assert.NotEmpty(t, root.ID)
	assert.Equal(t, "catalog", root.Classifier)
	require.NotNil(t, root.Position)
	assert.Equal(t, uint(4), root.Position.End.Line)

	assert.Equal(t, "tools", root.Attributes["Title"])

	entries := root.Children["Entries"]
	require.Len(t, entries, 2)
	assert.Equal(t, "entry", entries[0].Classifier)
	assert.Equal(t, "hammer", entries[0].Attributes["Name"])

	// A nil optional containment is omitted entirely.
	_, hasNote := root.Children["Note"]
	assert.False(t, hasNote)

	assert.Equal(t, "hammer", root.References["Ref"])

	assert.Equal(t, 3, doc.CountObjects())
}

func TestExportEmptyManyIsPresent(t *testing.T) {
	t.Parallel()

	schema := catalogSchema(t)

	doc, err := export.NewExporter(schema).Export(&catalog{Title: "empty"}, nil)
	require.NoError(t, err)

	entries, present := doc.Root.Children["Entries"]
	require.True(t, present)
	assert.Empty(t, entries)
}

func TestExportNilRoot(t *testing.T) {
	t.Parallel()

	schema := catalogSchema(t)

	doc, err := export.NewExporter(schema).Export(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, doc.Root)
	assert.Equal(t, 0, doc.CountObjects())
}

type stranger struct {
	ast.BaseNode
}

func TestExportUnknownClassifier(t *testing.T) {
	t.Parallel()

	schema := catalogSchema(t)

	_, err := export.NewExporter(schema).Export(&stranger{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stranger")
}

func TestImportRoundTrip(t *testing.T) {
	t.Parallel()

	schema := catalogSchema(t)

	doc, err := export.NewExporter(schema).Export(sampleCatalog(), nil)
	require.NoError(t, err)

	root, err := export.Import(doc)
	require.NoError(t, err)
	require.NotNil(t, root)

	assert.Equal(t, "catalog", root.Classifier)
	assert.Equal(t, "tools", root.Attributes["Title"])
	assert.Equal(t, "", root.Feature())

	entries := root.ChildrenOf("Entries")
	require.Len(t, entries, 2)
	assert.Equal(t, "entry", entries[0].Classifier)
	assert.Equal(t, "hammer", entries[0].Attributes["Name"])
	assert.Equal(t, "Entries", entries[0].Feature())

	// Parents are assigned on import.
	assert.Same(t, root, entries[0].Parent().(*export.ImportedNode))

	// Positions survive the round trip.
	require.NotNil(t, root.Position())
	assert.Equal(t, uint(4), root.Position().End.Line)
}

func TestImportNilDocument(t *testing.T) {
	t.Parallel()

	root, err := export.Import(nil)
	require.NoError(t, err)
	assert.Nil(t, root)

	root, err = export.Import(&export.Document{})
	require.NoError(t, err)
	assert.Nil(t, root)
}

func TestImportRejectsMissingClassifier(t *testing.T) {
	t.Parallel()

	_, err := export.Import(&export.Document{Root: &export.Object{ID: "x"}})
	require.Error(t, err)
}
