// Package ledger models the ordered record of step outcomes for a single
// task invocation (the "stack"), and the rule for merging a new outcome into it.
package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Status is the discriminator of a StepItem.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// IDPrefix prefixes every generated step id.
const IDPrefix = "plz-"

// StepItem is a single recorded step outcome. Result is only set on success,
// Attempt and Error only on failure.
type StepItem struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Status  Status          `json:"status"`
	Result  json.RawMessage `json:"result,omitempty"`
	Attempt *int            `json:"attempt,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Success builds a successful outcome.
func Success(id, name string, result json.RawMessage) StepItem {
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	return StepItem{ID: id, Name: name, Status: StatusSuccess, Result: result}
}

// Failure builds a failed outcome carrying a serialized error.
func Failure(id, name string, attempt int, serializedErr string) StepItem {
	return StepItem{ID: id, Name: name, Status: StatusError, Attempt: &attempt, Error: serializedErr}
}

// NewID returns a fresh identifier for a ledger write.
func NewID() string {
	return IDPrefix + uuid.NewString()
}

// IsSuccess reports whether the step completed.
func (s StepItem) IsSuccess() bool {
	return s.Status == StatusSuccess
}

// AttemptCount returns the recorded attempt, zero when absent.
func (s StepItem) AttemptCount() int {
	if s.Attempt == nil {
		return 0
	}
	return *s.Attempt
}

// MarshalJSON keeps the wire shape strict: result only on success,
// attempt and error only on failure, even when a caller built the item by hand.
func (s StepItem) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		Status  Status          `json:"status"`
		Result  json.RawMessage `json:"result,omitempty"`
		Attempt *int            `json:"attempt,omitempty"`
		Error   *string         `json:"error,omitempty"`
	}
	w := wire{ID: s.ID, Name: s.Name, Status: s.Status}
	switch s.Status {
	case StatusSuccess:
		w.Result = s.Result
		if len(w.Result) == 0 {
			w.Result = json.RawMessage("null")
		}
	case StatusError:
		attempt := s.AttemptCount()
		errStr := s.Error
		w.Attempt = &attempt
		w.Error = &errStr
	}
	return json.Marshal(w)
}

// Validate checks a single item's shape.
func (s StepItem) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("step item %q has no name", s.ID)
	}
	switch s.Status {
	case StatusSuccess:
		return nil
	case StatusError:
		if s.Attempt == nil {
			return fmt.Errorf("step %q has status error but no attempt", s.Name)
		}
		return nil
	default:
		return fmt.Errorf("step %q has unknown status %q", s.Name, s.Status)
	}
}
