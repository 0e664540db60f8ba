package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildTenderJSONSchema returns the JSON-Schema the model output must match.
// It is sent to the provider as an output constraint and used locally to
// validate the reply before unmarshalling.
func BuildTenderJSONSchema() map[string]any {
	itemProps := map[string]any{
		"description": map[string]any{"type": "string"},
		"quantity":    map[string]any{"type": "number", "minimum": 0.0},
		"unit":        map[string]any{"type": "string"},
	}

	props := map[string]any{
		"reference":    map[string]any{"type": "string"},
		"title":        map[string]any{"type": "string"},
		"organization": map[string]any{"type": "string"},
		"closing_date": map[string]any{"type": "string", "pattern": `^(\d{4}-\d{2}-\d{2})?$`},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":       "object",
				"properties": itemProps,
				"required":   []string{"description"},
			},
		},
		"notes":      map[string]any{"type": "string"},
		"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"field_confidences": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"reference", "title", "organization", "items", "confidence"},
	}
}

// ValidateJSONAgainstSchema validates data against schemaMap
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
