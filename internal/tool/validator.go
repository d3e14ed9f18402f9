package tool

import (
	"encoding/json"
	"fmt"
	"math"

	app_errors "scribe-ai/backend/internal/errors"
)

// ValidateArgs checks a parsed argument object against a tool's schema.
// Covers required fields and primitive type checks; properties absent from
// the schema pass through untouched. All failures wrap ErrSchemaValidation.
func ValidateArgs(args map[string]any, schema *JSONSchema) error {
	if schema == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	for _, field := range schema.Required {
		if _, exists := args[field]; !exists {
			return fmt.Errorf("%w: missing required field %q", app_errors.ErrSchemaValidation, field)
		}
	}

	for key, value := range args {
		propDef, ok := schema.Properties[key]
		if !ok {
			continue
		}
		expected := expectedType(propDef)
		if expected == "" {
			continue
		}
		if !typeMatches(value, expected) {
			return fmt.Errorf("%w: field %q expected %s but got %T",
				app_errors.ErrSchemaValidation, key, expected, value)
		}
	}

	return nil
}

func expectedType(definition any) string {
	if def, ok := definition.(map[string]any); ok {
		if value, ok := def["type"].(string); ok {
			return value
		}
	}
	return ""
}

func typeMatches(value any, expected string) bool {
	switch expected {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		return isNumber(value)
	case "integer":
		return isInteger(value)
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "null":
		return value == nil
	}
	return false
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64, int, int32, int64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int32, int64:
		return true
	case float64:
		return math.Trunc(v) == v
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}
