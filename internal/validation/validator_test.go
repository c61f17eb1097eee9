package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type labelPayload struct {
	Label string `json:"label" validate:"required"`
}

const labelSchema = `{
	"type": "object",
	"properties": {"label": {"type": "string"}},
	"required": ["label"]
}`

func TestValidate_NilSchemaAcceptsAnything(t *testing.T) {
	tests := []struct {
		name    string
		payload json.RawMessage
	}{
		{name: "absent", payload: nil},
		{name: "string", payload: json.RawMessage(`"blah"`)},
		{name: "object", payload: json.RawMessage(`{"x":1}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(nil, tt.payload)
			assert.True(t, result.Success)
			assert.Equal(t, tt.payload, result.Data)
		})
	}
}

func TestJSONSchema(t *testing.T) {
	schema := MustCompileJSONSchema("added number", labelSchema)

	tests := []struct {
		name    string
		payload json.RawMessage
		valid   bool
	}{
		{name: "valid object", payload: json.RawMessage(`{"label":"blah"}`), valid: true},
		{name: "missing payload", payload: nil, valid: false},
		{name: "wrong type", payload: json.RawMessage(`{"label":123}`), valid: false},
		{name: "wrong key", payload: json.RawMessage(`{"label2":"123"}`), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(schema, tt.payload)
			assert.Equal(t, tt.valid, result.Success, result.Reason)
			if !tt.valid {
				assert.True(t, errors.Is(result.Err, ErrInvalidPayload))
			}
		})
	}
}

func TestCompileJSONSchema_Invalid(t *testing.T) {
	_, err := CompileJSONSchema("broken", `{"type": `)
	assert.Error(t, err)
}

func TestStructSchema(t *testing.T) {
	schema := StructSchema[labelPayload]()

	result := Validate(schema, json.RawMessage(`{"label":"blah","extra":true}`))
	require.True(t, result.Success, result.Reason)
	assert.JSONEq(t, `{"label":"blah"}`, string(result.Data))

	assert.False(t, Validate(schema, nil).Success)
	assert.False(t, Validate(schema, json.RawMessage(`{"label":123}`)).Success)
	assert.False(t, Validate(schema, json.RawMessage(`{"label2":"123"}`)).Success)
}

func TestStructSchema_Scalar(t *testing.T) {
	schema := StructSchema[string]()

	result := Validate(schema, json.RawMessage(`"blah"`))
	require.True(t, result.Success)
	assert.JSONEq(t, `"blah"`, string(result.Data))

	assert.False(t, Validate(schema, json.RawMessage(`12`)).Success)
}

func TestFunc_WrapsErrors(t *testing.T) {
	schema := Func(func(payload json.RawMessage) (json.RawMessage, error) {
		return nil, errors.New("nope")
	})

	result := Validate(schema, json.RawMessage(`{}`))
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, ErrInvalidPayload)
	assert.Contains(t, result.Reason, "nope")
}

func TestNormalize(t *testing.T) {
	raw, err := Normalize(map[string]string{"id": "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x"}`, string(raw))

	raw, err = Normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = Normalize([]byte(`"s"`))
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"s"`), raw)

	_, err = Normalize([]byte(`{oops`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Normalize(make(chan int))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
