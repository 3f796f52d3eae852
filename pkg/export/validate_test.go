package export_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylva-dev/sylva/pkg/export"
)

func TestValidateConformingDocument(t *testing.T) {
	t.Parallel()

	schema := catalogSchema(t)

	doc, err := export.NewExporter(schema).Export(sampleCatalog(), nil)
	require.NoError(t, err)

	require.NoError(t, export.Validate(doc, schema))
}

func TestValidateSchemaNameMismatch(t *testing.T) {
	t.Parallel()

	schema := catalogSchema(t)

	doc, err := export.NewExporter(schema).Export(sampleCatalog(), nil)
	require.NoError(t, err)

	doc.Schema = "something-else"

	var validationErr *export.ValidationError

	require.ErrorAs(t, export.Validate(doc, schema), &validationErr)
	require.Len(t, validationErr.Problems, 1)
	assert.Contains(t, validationErr.Problems[0], "something-else")
}

func TestValidateUnknownClassifier(t *testing.T) {
	t.Parallel()

	schema := catalogSchema(t)

	doc, err := export.NewExporter(schema).Export(sampleCatalog(), nil)
	require.NoError(t, err)

	doc.Root.Children["Entries"][0].Classifier = "martian"

	var validationErr *export.ValidationError

	require.ErrorAs(t, export.Validate(doc, schema), &validationErr)
	assert.NotEmpty(t, validationErr.Problems)
}

func TestValidateMissingObjectID(t *testing.T) {
	t.Parallel()

	schema := catalogSchema(t)

	doc, err := export.NewExporter(schema).Export(sampleCatalog(), nil)
	require.NoError(t, err)

	doc.Root.ID = ""

	var validationErr *export.ValidationError

	require.ErrorAs(t, export.Validate(doc, schema), &validationErr)
}

func TestDocumentJSONSchemaShape(t *testing.T) {
	t.Parallel()

	jsonSchema := export.DocumentJSONSchema(catalogSchema(t))

	props, ok := jsonSchema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"const": "catalog"}, props["schema"])

	defs, ok := jsonSchema["definitions"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, defs, "object")
}
