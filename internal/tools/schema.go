package tools

import (
	"encoding/json"
	"fmt"
)

// checkSchema verifies at registration time that a tool schema uses only
// JSON-representable types.
func checkSchema(schema map[string]any) error {
	if schema == nil {
		return fmt.Errorf("nil schema")
	}
	if t, _ := schema["type"].(string); t != "object" {
		return fmt.Errorf("top-level type must be object, got %q", schema["type"])
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return fmt.Errorf("schema missing properties")
	}
	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("property %q is not an object", name)
		}
		t, _ := prop["type"].(string)
		switch t {
		case "string", "number", "integer", "boolean", "array", "object":
		default:
			return fmt.Errorf("property %q has unsupported type %q", name, t)
		}
	}
	return nil
}

// validateArgs parses raw arguments and checks them against the schema:
// required fields must be present and every provided field must match its
// declared type. Invalid arguments short-circuit to a failure result, the
// handler never runs.
func validateArgs(schema map[string]any, raw json.RawMessage) (map[string]any, error) {
	var args map[string]any
	if len(raw) == 0 {
		args = map[string]any{}
	} else if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %v", err)
	}

	props, _ := schema["properties"].(map[string]any)

	for _, field := range requiredList(schema) {
		value, present := args[field]
		if !present || value == nil {
			return nil, fmt.Errorf("missing required field %q", field)
		}
		if s, ok := value.(string); ok && s == "" {
			return nil, fmt.Errorf("required field %q is empty", field)
		}
	}

	for name, value := range args {
		propRaw, ok := props[name]
		if !ok {
			// Unknown fields are dropped rather than rejected; models
			// occasionally add extras.
			delete(args, name)
			continue
		}
		prop, _ := propRaw.(map[string]any)
		declared, _ := prop["type"].(string)
		if !matchesType(value, declared) {
			return nil, fmt.Errorf("field %q must be %s", name, declared)
		}
	}

	return args, nil
}

func requiredList(schema map[string]any) []string {
	switch required := schema["required"].(type) {
	case []string:
		return required
	case []any:
		out := make([]string, 0, len(required))
		for _, r := range required {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func matchesType(value any, declared string) bool {
	if value == nil {
		return true
	}
	switch declared {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		_, ok := value.(float64)
		return ok
	case "integer":
		f, ok := value.(float64)
		return ok && f == float64(int64(f))
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	}
	return false
}
