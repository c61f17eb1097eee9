// Package validation checks event payloads against the schema declared for
// their event. Validation is parse-or-fail: a payload either comes back in
// its normalized form or is rejected.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPayload is wrapped by every validation failure.
var ErrInvalidPayload = errors.New("invalid payload")

// Schema validates a raw JSON payload and returns its normalized form.
type Schema interface {
	Validate(payload json.RawMessage) (json.RawMessage, error)
}

// Func adapts a plain function to the Schema interface.
type Func func(payload json.RawMessage) (json.RawMessage, error)

// Validate calls f.
func (f Func) Validate(payload json.RawMessage) (json.RawMessage, error) {
	return f(payload)
}

// Result represents the outcome of validating a payload
type Result struct {
	Success bool
	Data    json.RawMessage
	Reason  string
	Err     error
}

// Validate runs payload through schema. A nil schema accepts any payload,
// including none, unchanged.
func Validate(schema Schema, payload json.RawMessage) Result {
	if schema == nil {
		return Result{Success: true, Data: payload}
	}

	data, err := schema.Validate(payload)
	if err != nil {
		if !errors.Is(err, ErrInvalidPayload) {
			err = fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return Result{Success: false, Reason: err.Error(), Err: err}
	}
	return Result{Success: true, Data: data}
}

// Normalize turns an arbitrary Go value into a raw JSON payload. Raw
// messages and byte slices holding JSON pass through unchanged; nil yields
// an empty (absent) payload.
func Normalize(v interface{}) (json.RawMessage, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	case []byte:
		if len(p) == 0 {
			return nil, nil
		}
		if !json.Valid(p) {
			return nil, fmt.Errorf("%w: payload is not valid JSON", ErrInvalidPayload)
		}
		return json.RawMessage(p), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return data, nil
	}
}

// isAbsent reports whether a payload was not supplied at all.
func isAbsent(payload json.RawMessage) bool {
	return len(bytes.TrimSpace(payload)) == 0
}
