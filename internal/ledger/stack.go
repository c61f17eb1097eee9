package ledger

import "fmt"

// Stack is the ordered execution history of one task invocation. Entries
// are keyed by step name; at most one entry exists per name.
type Stack []StepItem

// Find looks up the outcome recorded for name.
func (s Stack) Find(name string) (StepItem, bool) {
	for _, item := range s {
		if item.Name == name {
			return item, true
		}
	}
	return StepItem{}, false
}

// Update merges item into the stack: an entry with the same name is
// replaced in place, otherwise item is appended. The receiver is never
// modified.
func (s Stack) Update(item StepItem) Stack {
	out := make(Stack, 0, len(s)+1)
	replaced := false
	for _, existing := range s {
		if existing.Name == item.Name {
			out = append(out, item)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, item)
	}
	return out
}

// Clone returns an independent copy of the stack.
func (s Stack) Clone() Stack {
	if s == nil {
		return Stack{}
	}
	out := make(Stack, len(s))
	copy(out, s)
	return out
}

// Names returns the step names in ledger order.
func (s Stack) Names() []string {
	names := make([]string, 0, len(s))
	for _, item := range s {
		names = append(names, item.Name)
	}
	return names
}

// Validate rejects malformed items and duplicate step names.
func (s Stack) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, item := range s {
		if err := item.Validate(); err != nil {
			return err
		}
		if seen[item.Name] {
			return fmt.Errorf("duplicate step name %q in stack", item.Name)
		}
		seen[item.Name] = true
	}
	return nil
}

// Summary counts successes and failures.
func (s Stack) Summary() (succeeded, failed int) {
	for _, item := range s {
		if item.IsSuccess() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
