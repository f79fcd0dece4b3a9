package template

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildDocumentSchema returns the JSON schema a generated template document
// must satisfy before it is accepted into the registry.
func BuildDocumentSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"issuer", "keywords", "fields"},
		"properties": map[string]any{
			"issuer": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"keywords": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"fields": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":      "string",
					"minLength": 1,
				},
			},
			"lines": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"description"},
					"properties": map[string]any{
						"description": map[string]any{"type": "string", "minLength": 1},
					},
				},
			},
			"options": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"date_formats": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"decimal_separator": map[string]any{
						"type": "string",
						"enum": []string{".", ","},
					},
				},
			},
		},
	}
}

// ValidateDocument checks raw JSON against the template document schema.
func ValidateDocument(data []byte) error {
	b, err := json.Marshal(BuildDocumentSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("template.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("template.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal template json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("template json does not match schema: %w", err)
	}
	return nil
}
