// Package util holds the argument-validation and instruction-template
// helpers shared by the tool and agent packages.
package util

import "fmt"

// ValidationError reports a tool argument that failed schema validation.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateParameters checks model-supplied arguments against a tool's
// parameter schema: every required field must be present and every declared
// field must carry a value of its declared type. Undeclared extra fields pass
// through untouched; the domain tools wrap structured payloads as serialized
// strings at this boundary and parse them inside the tool body, so the
// schema-level types here are deliberately shallow.
func ValidateParameters(args map[string]any, schema map[string]any) error {
	for _, field := range RequiredFields(schema) {
		if _, ok := args[field]; !ok {
			return &ValidationError{Field: field, Message: "required field is missing"}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for field, value := range args {
		prop, ok := properties[field].(map[string]any)
		if !ok {
			continue
		}

		wantType, _ := prop["type"].(string)
		if !matchesType(value, wantType) {
			return &ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", wantType, value),
			}
		}
	}

	return nil
}

// RequiredFields returns the schema's required-field names. Both []string
// (hand-written schemas) and []any (schemas decoded from JSON) forms are
// accepted.
func RequiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, v := range req {
			if name, ok := v.(string); ok {
				out = append(out, name)
			}
		}
		return out
	default:
		return nil
	}
}

// matchesType reports whether a decoded JSON value satisfies the declared
// schema type. nil satisfies every type; unknown types are not enforced.
func matchesType(value any, wantType string) bool {
	if value == nil {
		return true
	}

	switch wantType {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "integer":
		// encoding/json decodes every number as float64.
		f, ok := value.(float64)
		return ok && f == float64(int64(f))
	case "number":
		_, ok := value.(float64)
		return ok
	default:
		return true
	}
}
