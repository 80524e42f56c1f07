package dashboard

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/chart_config.json
var chartConfigSchema []byte

// ConfigValidator validates decoded chart configuration payloads.
type ConfigValidator interface {
	Validate(payload any) error
}

// JSONSchemaValidator compiles a schema document on first use and validates
// JSON-compatible payloads against it.
type JSONSchemaValidator struct {
	name     string
	document []byte

	mu       sync.RWMutex
	compiled *jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator(name string, document []byte) *JSONSchemaValidator {
	return &JSONSchemaValidator{name: name, document: document}
}

// NewChartConfigValidator validates chart configurations against the bundled schema.
func NewChartConfigValidator() *JSONSchemaValidator {
	return NewJSONSchemaValidator("chart_config.json", chartConfigSchema)
}

// Validate ensures the payload satisfies the schema. The payload must be built
// from JSON types (map[string]any, []any, float64, string, bool, nil).
func (v *JSONSchemaValidator) Validate(payload any) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: %s failed validation: %w", v.name, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema := v.compiled
	v.mu.RUnlock()
	if schema != nil {
		return schema, nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(v.name, bytes.NewReader(v.document)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", v.name, err)
	}
	compiled, err := compiler.Compile(v.name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", v.name, err)
	}
	v.mu.Lock()
	v.compiled = compiled
	v.mu.Unlock()
	return compiled, nil
}
