// Package step implements the per-invocation step controller: memoization of
// named units of work against a ledger, attempt counting, and the retry
// ceiling that makes task replay safe.
package step

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/maxkimambo/plz/internal/ledger"
	"github.com/maxkimambo/plz/internal/logger"
)

// DefaultRetries is the retry ceiling applied when a step sets none.
const DefaultRetries = 3

// Forwarder receives the whole ledger after every settled step.
type Forwarder interface {
	ForwardStack(ctx context.Context, stack ledger.Stack) error
}

// ForwarderFunc adapts a function to Forwarder.
type ForwarderFunc func(ctx context.Context, stack ledger.Stack) error

// ForwardStack calls f.
func (f ForwarderFunc) ForwardStack(ctx context.Context, stack ledger.Stack) error {
	return f(ctx, stack)
}

// Run is the invocation context handed to a task handler. It lives for a
// single CallTask and owns a private copy of the supplied ledger.
type Run struct {
	Task    string
	Event   string
	Payload json.RawMessage

	mu        sync.Mutex
	stack     ledger.Stack
	forwarder Forwarder
	newID     func() string
}

// NewRun creates the invocation context for task, bound to a copy of stack.
func NewRun(task, event string, payload json.RawMessage, stack ledger.Stack, forwarder Forwarder) *Run {
	return &Run{
		Task:      task,
		Event:     event,
		Payload:   payload,
		stack:     stack.Clone(),
		forwarder: forwarder,
		newID:     ledger.NewID,
	}
}

// Stack returns a snapshot of the live ledger.
func (r *Run) Stack() ledger.Stack {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stack.Clone()
}

// DecodePayload unmarshals the validated payload into v.
func (r *Run) DecodePayload(v interface{}) error {
	if len(r.Payload) == 0 {
		return json.Unmarshal([]byte("null"), v)
	}
	return json.Unmarshal(r.Payload, v)
}

func (r *Run) lookup(name string) (ledger.StepItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stack.Find(name)
}

// record merges item into the ledger and forwards the full ledger. Forward
// failures are logged; the local outcome stands regardless.
func (r *Run) record(ctx context.Context, item ledger.StepItem) {
	r.mu.Lock()
	r.stack = r.stack.Update(item)
	snapshot := r.stack.Clone()
	r.mu.Unlock()

	if r.forwarder == nil {
		return
	}
	if err := r.forwarder.ForwardStack(ctx, snapshot); err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"task":  r.Task,
			"step":  item.Name,
			"error": err.Error(),
		}).Warn("Failed to forward step ledger")
	}
}
