// Package registry holds the event definitions and task bindings of a
// client: which events can be fired, which schema their payload must
// satisfy, and which tasks react to each of them.
package registry

import (
	"context"
	"sort"
	"sync"

	dipErrors "github.com/maxkimambo/plz/internal/errors"
	"github.com/maxkimambo/plz/internal/step"
	"github.com/maxkimambo/plz/internal/validation"
)

// EventDefinition declares a fireable event and its optional payload schema.
type EventDefinition struct {
	Payload validation.Schema
}

// Events maps event names to their definitions.
type Events map[string]EventDefinition

// Handler is the body of a task.
type Handler func(ctx context.Context, run *step.Run) (interface{}, error)

// Binding ties a task handler to the event it reacts to.
type Binding struct {
	Event   string
	Handler Handler
}

// Tasks maps task names to their bindings.
type Tasks map[string]Binding

// Registry stores event definitions and task bindings. Registration is
// expected to happen before dispatch; the lock only keeps late
// registration from racing lookups.
type Registry struct {
	mu       sync.RWMutex
	events   Events
	tasks    map[string]Binding
	eventMap map[string][]string
	strict   bool
}

// New creates an empty registry. In strict mode Register rejects tasks
// bound to undeclared events.
func New(strict bool) *Registry {
	return &Registry{
		events:   make(Events),
		tasks:    make(map[string]Binding),
		eventMap: make(map[string][]string),
		strict:   strict,
	}
}

// DefineEvents declares the events that can be fired. Later calls add to
// or replace earlier definitions.
func (r *Registry) DefineEvents(events Events) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, def := range events {
		r.events[name] = def
	}
}

// Register records each task under its name and appends it to the task
// list of its event. Tasks are processed in name order so the per-event
// list is deterministic.
func (r *Registry) Register(tasks Tasks) error {
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.strict {
		for _, name := range names {
			binding := tasks[name]
			if _, ok := r.events[binding.Event]; !ok {
				return dipErrors.Newf(dipErrors.CodeBadRequest, "Task %q is bound to undeclared event %q", name, binding.Event).
					WithContext("task", name).
					WithContext("event", binding.Event)
			}
		}
	}

	for _, name := range names {
		binding := tasks[name]
		if previous, exists := r.tasks[name]; exists {
			r.eventMap[previous.Event] = remove(r.eventMap[previous.Event], name)
			if len(r.eventMap[previous.Event]) == 0 {
				delete(r.eventMap, previous.Event)
			}
		}
		r.tasks[name] = binding
		r.eventMap[binding.Event] = append(r.eventMap[binding.Event], name)
	}
	return nil
}

// Task returns the binding registered under name.
func (r *Registry) Task(name string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	binding, ok := r.tasks[name]
	return binding, ok
}

// TasksFor returns the task names bound to event, or false if none are.
func (r *Registry) TasksFor(event string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names, ok := r.eventMap[event]
	if !ok {
		return nil, false
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, true
}

// Event returns the definition of event.
func (r *Registry) Event(name string) (EventDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.events[name]
	return def, ok
}

// Schema returns the payload schema of event, nil if it has none.
func (r *Registry) Schema(event string) validation.Schema {
	def, _ := r.Event(event)
	return def.Payload
}

// EventNames lists declared events in sorted order.
func (r *Registry) EventNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.events))
	for name := range r.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TaskNames lists registered tasks in sorted order.
func (r *Registry) TaskNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func remove(list []string, name string) []string {
	out := list[:0:0]
	for _, item := range list {
		if item != name {
			out = append(out, item)
		}
	}
	return out
}
