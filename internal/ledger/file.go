package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a stack from disk, as YAML for .yaml/.yml paths and JSON
// otherwise. A missing file yields an empty stack.
func Load(path string) (Stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Stack{}, nil
		}
		return nil, fmt.Errorf("failed to read stack file %s: %w", path, err)
	}
	if isYAML(path) {
		return DecodeYAML(data)
	}
	return Decode(data)
}

// Decode parses and validates a JSON stack.
func Decode(data []byte) (Stack, error) {
	var stack Stack
	if len(bytes.TrimSpace(data)) == 0 {
		return Stack{}, nil
	}
	if err := json.Unmarshal(data, &stack); err != nil {
		return nil, fmt.Errorf("failed to decode stack: %w", err)
	}
	if err := stack.Validate(); err != nil {
		return nil, err
	}
	return stack, nil
}

// DecodeYAML parses and validates a YAML stack. Documents go through their
// JSON form so step results keep the same shape as on the wire.
func DecodeYAML(data []byte) (Stack, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode stack: %w", err)
	}
	if doc == nil {
		return Stack{}, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stack: %w", err)
	}
	return Decode(raw)
}

// Save writes the stack to disk, as YAML for .yaml/.yml paths and indented
// JSON otherwise.
func Save(path string, stack Stack) error {
	data, err := json.MarshalIndent(stack.Clone(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stack: %w", err)
	}
	if isYAML(path) {
		if data, err = toYAML(data); err != nil {
			return fmt.Errorf("failed to encode stack: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write stack file %s: %w", path, err)
	}
	return nil
}

func toYAML(jsonData []byte) ([]byte, error) {
	var doc interface{}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
