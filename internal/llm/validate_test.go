package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

var pairSchema = &Schema{
	Name: "test-pair",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "string"},
			"b": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 2},
		},
		"required":             []string{"a", "b"},
		"additionalProperties": false,
	},
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"a":"x","b":["1","2"]}`, false},
		{"not json", `{"a":`, true},
		{"missing field", `{"a":"x"}`, true},
		{"too few items", `{"a":"x","b":["1"]}`, true},
		{"extra field", `{"a":"x","b":["1","2"],"c":1}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponse(pairSchema, json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("err type = %T, want *ErrInvalidResponse", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := ValidateResponse(nil, json.RawMessage(`not json`)); err != nil {
		t.Fatalf("nil schema should accept anything, got %v", err)
	}
}
