package tools

import (
	"encoding/json"
	"testing"
)

func TestValidateArgs(t *testing.T) {
	schema := objectSchema(map[string]any{
		"title":  stringProp("t"),
		"levels": map[string]any{"type": "integer"},
		"tags":   map[string]any{"type": "array"},
	}, "title")

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"title":"Algebra","levels":2}`, false},
		{"missing required", `{"levels":2}`, true},
		{"empty required string", `{"title":""}`, true},
		{"wrong type", `{"title":"x","levels":"two"}`, true},
		{"float for integer", `{"title":"x","levels":2.5}`, true},
		{"array ok", `{"title":"x","tags":["a","b"]}`, false},
		{"not an object", `[1,2]`, true},
		{"empty args with required", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateArgs(schema, json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Errorf("validateArgs(%s) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestValidateArgsDropsUnknownFields(t *testing.T) {
	schema := objectSchema(map[string]any{"title": stringProp("t")}, "title")
	args, err := validateArgs(schema, json.RawMessage(`{"title":"x","surprise":"y"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := args["surprise"]; ok {
		t.Error("unknown field should be dropped")
	}
}

func TestCheckSchemaRejectsBadTypes(t *testing.T) {
	err := checkSchema(objectSchema(map[string]any{
		"when": map[string]any{"type": "datetime"},
	}))
	if err == nil {
		t.Error("non-JSON type should be rejected at registration")
	}
}
