package messages

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed inbound.schema.json
var inboundSchema string

// ErrInvalidMessage is returned by Validator.Decode for malformed input.
var ErrInvalidMessage = errors.New("invalid message")

// Validator checks inbound messages against the embedded schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the inbound message schema.
func NewValidator() (*Validator, error) {
	s, err := jsonschema.CompileString("inbound.schema.json", inboundSchema)
	if err != nil {
		return nil, fmt.Errorf("compile inbound schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Decode validates raw and returns its envelope.
func (v *Validator) Decode(raw []byte) (Envelope, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return env, nil
}

// DecodePayload unmarshals an envelope payload into dst.
func DecodePayload(env Envelope, dst interface{}) error {
	if len(env.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrInvalidMessage, env.Type, err)
	}
	return nil
}
