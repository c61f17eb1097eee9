package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONSchema validates payloads against a compiled JSON Schema document.
type JSONSchema struct {
	url    string
	schema *jsonschema.Schema
}

// CompileJSONSchema compiles a JSON Schema document. name only identifies
// the schema in error messages.
func CompileJSONSchema(name, document string) (*JSONSchema, error) {
	url := "mem://plz/" + strings.ReplaceAll(name, " ", "-") + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(document)); err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &JSONSchema{url: url, schema: schema}, nil
}

// MustCompileJSONSchema is like CompileJSONSchema but panics on error. It is
// meant for schemas declared at process start.
func MustCompileJSONSchema(name, document string) *JSONSchema {
	s, err := CompileJSONSchema(name, document)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate implements Schema. An absent payload is validated as JSON null.
func (s *JSONSchema) Validate(payload json.RawMessage) (json.RawMessage, error) {
	raw := payload
	if isAbsent(raw) {
		raw = json.RawMessage("null")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return payload, nil
}
