package export

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sylva-dev/sylva/pkg/metamodel"
)

// ValidationError reports that a document does not conform to its schema.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document validation failed with %d problem(s): %v", len(e.Problems), e.Problems)
}

// Validate checks a document against the JSON Schema derived from its
// metamodel schema. A nil return means the document conforms.
func Validate(doc *Document, schema *metamodel.Schema) error {
	if doc.Schema != schema.Name {
		return &ValidationError{Problems: []string{
			fmt.Sprintf("document schema %q does not match %q", doc.Schema, schema.Name),
		}}
	}

	schemaLoader := gojsonschema.NewGoLoader(DocumentJSONSchema(schema))
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("running schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, problem := range result.Errors() {
		problems = append(problems, problem.String())
	}

	return &ValidationError{Problems: problems}
}

// DocumentJSONSchema derives a JSON Schema (draft-07) for documents
// conforming to the given metamodel schema: every object's classifier must
// name a known classifier, and feature maps hold the declared shapes.
func DocumentJSONSchema(schema *metamodel.Schema) map[string]any {
	classifierNames := make([]any, 0, len(schema.Classifiers))
	for _, classifier := range schema.Classifiers {
		classifierNames = append(classifierNames, classifier.Name)
	}

	objectSchema := map[string]any{
		"type":     "object",
		"required": []any{"id", "classifier"},
		"properties": map[string]any{
			"id":         map[string]any{"type": "string", "minLength": 1},
			"classifier": map[string]any{"enum": classifierNames},
			"position":   map[string]any{"type": "object"},
			"attributes": map[string]any{"type": "object"},
			"children": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/definitions/object"},
				},
			},
			"references": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
		},
	}

	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"definitions": map[string]any{
			"object": objectSchema,
		},
		"required": []any{"schema", "version"},
		"properties": map[string]any{
			"schema":  map[string]any{"const": schema.Name},
			"version": map[string]any{"type": "integer"},
			"root":    map[string]any{"$ref": "#/definitions/object"},
			"issues":  map[string]any{"type": "array"},
		},
	}
}
