package messages

import (
	"errors"
	"testing"
)

func TestValidator_Decode(t *testing.T) {
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"hello", `{"type":"hello","payload":{"client":"viewer"}}`, true},
		{"hello without payload", `{"type":"hello"}`, true},
		{"camera", `{"type":"camera","payload":{"x":12.5,"y":-3}}`, true},
		{"camera missing y", `{"type":"camera","payload":{"x":1}}`, false},
		{"camera without payload", `{"type":"camera"}`, false},
		{"move", `{"type":"move","payload":{"direction":"northeast"}}`, true},
		{"move bad direction", `{"type":"move","payload":{"direction":"up"}}`, false},
		{"teleport", `{"type":"teleport","payload":{"x":10,"y":20}}`, true},
		{"teleport negative", `{"type":"teleport","payload":{"x":-1,"y":20}}`, false},
		{"teleport fractional", `{"type":"teleport","payload":{"x":1.5,"y":20}}`, false},
		{"damage", `{"type":"damage","payload":{"id":"warehouse-1","amount":60,"queue":true}}`, true},
		{"damage zero amount", `{"type":"damage","payload":{"id":"warehouse-1","amount":0}}`, true},
		{"damage empty id", `{"type":"damage","payload":{"id":"","amount":5}}`, false},
		{"preload", `{"type":"preload","payload":{"name":"boss","x":5,"y":5,"radius":10}}`, true},
		{"preload huge radius", `{"type":"preload","payload":{"name":"boss","x":5,"y":5,"radius":1000}}`, false},
		{"release", `{"type":"release_preload","payload":{"name":"boss"}}`, true},
		{"sweep", `{"type":"sweep"}`, true},
		{"unknown type", `{"type":"chat","payload":{}}`, false},
		{"extra field", `{"type":"sweep","extra":1}`, false},
		{"missing type", `{"payload":{}}`, false},
		{"not json", `{type:`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := v.Decode([]byte(tt.raw))
			if tt.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if env.Type == "" {
					t.Fatal("decoded envelope has no type")
				}
				return
			}
			if !errors.Is(err, ErrInvalidMessage) {
				t.Fatalf("expected ErrInvalidMessage, got %v", err)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	env, err := v.Decode([]byte(`{"type":"damage","payload":{"id":"radar_tower-1","amount":75}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var msg DamageMessage
	if err := DecodePayload(env, &msg); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if msg.ID != "radar_tower-1" || msg.Amount != 75 || msg.Queue {
		t.Fatalf("got %+v", msg)
	}
}
