package transport

import (
	"context"
	"sync"

	"github.com/maxkimambo/plz/internal/ledger"
	"github.com/maxkimambo/plz/internal/logger"
)

// RecordedEvent is an event captured by a Recorder.
type RecordedEvent struct {
	Event    EventFire
	Metadata Metadata
}

// RecordedStack is a ledger captured by a Recorder.
type RecordedStack struct {
	Stack    ledger.Stack
	Metadata Metadata
}

// Recorder keeps every send in memory. It backs dry runs and tests.
type Recorder struct {
	mu     sync.Mutex
	events []RecordedEvent
	stacks []RecordedStack
	// Echo logs each captured send when set.
	Echo bool
}

func (r *Recorder) SendEvent(ctx context.Context, event EventFire, meta Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{Event: event, Metadata: meta})
	if r.Echo {
		logger.User.Eventf("event %q -> tasks %v", event.Name, event.TaskNames)
	}
	return nil
}

func (r *Recorder) SendStack(ctx context.Context, stack ledger.Stack, meta Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stacks = append(r.stacks, RecordedStack{Stack: stack.Clone(), Metadata: meta})
	if r.Echo {
		ok, failed := stack.Summary()
		logger.User.Stepf("stack: %d step(s), %d succeeded, %d failed", len(stack), ok, failed)
	}
	return nil
}

// Events returns the captured events.
func (r *Recorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Stacks returns the captured ledgers.
func (r *Recorder) Stacks() []RecordedStack {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedStack, len(r.stacks))
	copy(out, r.stacks)
	return out
}

// LastStack returns the most recently captured ledger.
func (r *Recorder) LastStack() (ledger.Stack, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stacks) == 0 {
		return nil, false
	}
	return r.stacks[len(r.stacks)-1].Stack, true
}

// Reset clears captured sends.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.stacks = nil
}

// Multi fans a send out to several senders, returning the first error.
type Multi []Sender

func (m Multi) SendEvent(ctx context.Context, event EventFire, meta Metadata) error {
	var firstErr error
	for _, s := range m {
		if err := s.SendEvent(ctx, event, meta); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) SendStack(ctx context.Context, stack ledger.Stack, meta Metadata) error {
	var firstErr error
	for _, s := range m {
		if err := s.SendStack(ctx, stack, meta); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
