package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func getStructValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// Struct validates payloads by decoding them into T and checking its
// `validate` struct tags. Unknown object keys are dropped from the
// normalized payload.
type Struct[T any] struct{}

// StructSchema returns a Schema for T.
func StructSchema[T any]() Struct[T] {
	return Struct[T]{}
}

// Validate implements Schema.
func (Struct[T]) Validate(payload json.RawMessage) (json.RawMessage, error) {
	value, err := Decode[T](payload)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return data, nil
}

// Decode parses payload into T and runs struct-tag validation.
func Decode[T any](payload json.RawMessage) (T, error) {
	var value T
	if isAbsent(payload) {
		return value, fmt.Errorf("%w: payload is required", ErrInvalidPayload)
	}
	if err := json.Unmarshal(payload, &value); err != nil {
		return value, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if isStruct(value) {
		if err := getStructValidator().Struct(value); err != nil {
			return value, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}
	return value, nil
}

func isStruct(v interface{}) bool {
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
