package services

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func itemsSchema(users []string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"user":     map[string]any{"type": "string", "enum": users},
						"raw_name": map[string]any{"type": "string"},
						"weight":   map[string]any{"type": "string"},
					},
					"required":             []string{"user", "raw_name", "weight"},
					"additionalProperties": false,
				},
			},
			"warnings": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"unparsed": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []string{"items", "warnings", "unparsed"},
		"additionalProperties": false,
	}
}

func nutritionSchema() map[string]any {
	nonNegative := map[string]any{"type": "number", "minimum": 0}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"products": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"raw_name": map[string]any{"type": "string"},
						"name":     map[string]any{"type": "string"},
						"per_100g": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"proteins": nonNegative,
								"fats":     nonNegative,
								"carbs":    nonNegative,
								"calories": nonNegative,
							},
							"required":             []string{"proteins", "fats", "carbs", "calories"},
							"additionalProperties": false,
						},
						"confidence":  map[string]any{"type": "number", "minimum": 0, "maximum": 1},
						"assumptions": map[string]any{"type": "string"},
					},
					"required":             []string{"raw_name", "name", "per_100g", "confidence", "assumptions"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"products"},
		"additionalProperties": false,
	}
}

// outputSchema is a JSON schema sent to the model and used to check its answer.
type outputSchema struct {
	name     string
	doc      map[string]any
	compiled *jsonschema.Schema
}

func compileSchema(name string, doc map[string]any) (*outputSchema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	compiled, err := jsonschema.CompileString(name+".json", string(raw))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", name, err)
	}
	return &outputSchema{name: name, doc: doc, compiled: compiled}, nil
}

// decode validates text against the schema and unmarshals it into out.
func (s *outputSchema) decode(text string, out any) error {
	var doc interface{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return &OracleSchemaViolation{Operation: s.name, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := s.compiled.Validate(doc); err != nil {
		return &OracleSchemaViolation{Operation: s.name, Err: err}
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return &OracleSchemaViolation{Operation: s.name, Err: err}
	}
	return nil
}
