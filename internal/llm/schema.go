package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildOrderJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We use it locally to reject model responses with missing or
// mistyped fields; the declared grand total is the one optional aggregate
// since older documents omit it.
func BuildOrderJSONSchema() map[string]any {
	itemProps := map[string]any{
		"codigo":   map[string]any{"type": "string"},
		"articulo": map[string]any{"type": "string"},
		"iva":      map[string]any{"type": "number"},
		"pre_uni":  map[string]any{"type": "number"},
		"cantidad": map[string]any{"type": "number"},
		"total":    map[string]any{"type": "number"},
	}

	props := map[string]any{
		"pedido_numero": map[string]any{"type": "string", "minLength": 1},
		"items": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           itemProps,
				"required":             []string{"codigo", "articulo", "iva", "pre_uni", "cantidad", "total"},
			},
		},
		"unidades":  map[string]any{"type": "number"},
		"subtotal":  map[string]any{"type": "number"},
		"iva_total": map[string]any{"type": "number"},
		"total":     map[string]any{"type": "number"},
	}
	required := []string{"pedido_numero", "items", "unidades", "subtotal", "iva_total"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
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
