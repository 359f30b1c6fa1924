package tool

import (
	"fmt"
	"sort"

	"github.com/civicgrant/grantflow/internal/util"
)

// VerifySchema checks a tool's parameter schema against the generation
// service's call-schema constraints: every declared parameter must be listed
// as required (optional/defaulted parameters are rejected by the provider)
// and every array-typed parameter must declare its item type. Schema
// violations are design-time errors; run this in contract tests and at
// registration, never discover it in a live turn.
func VerifySchema(t Tool) error {
	schema := t.Parameters()
	if schema == nil {
		return fmt.Errorf("tool %s: missing parameter schema", t.Name())
	}

	if typ, _ := schema["type"].(string); typ != "object" {
		return fmt.Errorf("tool %s: schema root must be an object, got %q", t.Name(), typ)
	}

	properties, _ := schema["properties"].(map[string]any)
	required := map[string]bool{}
	for _, name := range util.RequiredFields(schema) {
		required[name] = true
	}

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !required[name] {
			return fmt.Errorf("tool %s: parameter %q must be required", t.Name(), name)
		}

		prop, _ := properties[name].(map[string]any)
		if typ, _ := prop["type"].(string); typ == "array" {
			items, ok := prop["items"].(map[string]any)
			if !ok {
				return fmt.Errorf("tool %s: array parameter %q must declare items", t.Name(), name)
			}
			if _, ok := items["type"].(string); !ok {
				return fmt.Errorf("tool %s: array parameter %q must declare an item type", t.Name(), name)
			}
		}
	}

	for name := range required {
		if _, ok := properties[name]; !ok {
			return fmt.Errorf("tool %s: required parameter %q is not declared", t.Name(), name)
		}
	}

	return nil
}

// VerifySchemas checks a set of tools and returns the first violation.
func VerifySchemas(tools ...Tool) error {
	for _, t := range tools {
		if err := VerifySchema(t); err != nil {
			return err
		}
	}

	return nil
}
