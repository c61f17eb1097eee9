// Package client is the entry point applications use: declare events,
// register tasks, fire events and call tasks with a ledger to replay.
package client

import (
	"context"
	"encoding/json"
	"fmt"

	dipErrors "github.com/maxkimambo/plz/internal/errors"
	"github.com/maxkimambo/plz/internal/ledger"
	"github.com/maxkimambo/plz/internal/logger"
	"github.com/maxkimambo/plz/internal/registry"
	"github.com/maxkimambo/plz/internal/step"
	"github.com/maxkimambo/plz/internal/transport"
	"github.com/maxkimambo/plz/internal/validation"
)

const (
	DefaultClientName    = "plz"
	DefaultClientVersion = "v0.1.0"
)

// Options configures a Client. ClientID is the only required field.
type Options struct {
	ClientID           string
	ClientName         string
	ClientVersion      string
	StrictRegistration bool
}

// Client dispatches events and task invocations.
type Client struct {
	registry *registry.Registry
	sender   transport.Sender
	metadata transport.Metadata
}

// Invocation is the outcome of a CallTask.
type Invocation struct {
	Task   string
	Event  string
	Result interface{}
	Stack  ledger.Stack
}

// New creates a client that reports to sender.
func New(opts Options, sender transport.Sender) (*Client, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("client id is required")
	}
	if opts.ClientName == "" {
		opts.ClientName = DefaultClientName
	}
	if opts.ClientVersion == "" {
		opts.ClientVersion = DefaultClientVersion
	}
	if sender == nil {
		sender = transport.Discard{}
	}
	return &Client{
		registry: registry.New(opts.StrictRegistration),
		sender:   sender,
		metadata: transport.Metadata{
			ClientID:      opts.ClientID,
			ClientName:    opts.ClientName,
			ClientVersion: opts.ClientVersion,
		},
	}, nil
}

// Metadata returns the identity attached to every send.
func (c *Client) Metadata() transport.Metadata {
	return c.metadata
}

// Registry exposes the event and task tables.
func (c *Client) Registry() *registry.Registry {
	return c.registry
}

// DefineEvents declares the fireable events.
func (c *Client) DefineEvents(events registry.Events) *Client {
	c.registry.DefineEvents(events)
	return c
}

// Register binds tasks to events.
func (c *Client) Register(tasks registry.Tasks) error {
	return c.registry.Register(tasks)
}

// On starts a fluent task binding for event.
func (c *Client) On(event string) registry.EventBuilder {
	return registry.On(event)
}

// FireEvent validates payload against event's schema and hands the event
// and its bound task names to the collector. Failures outside the taxonomy
// are reported as UNKNOWN_ERROR.
func (c *Client) FireEvent(ctx context.Context, event string, payload interface{}) error {
	logger.Op.Infof("Event fired: %s", event)

	err := c.fireEvent(ctx, event, payload)
	if err == nil {
		return nil
	}
	logger.Op.WithFields(map[string]interface{}{
		"event": event,
		"error": err.Error(),
	}).Error("Event dispatch failed")

	if _, ok := dipErrors.AsDIPError(err); ok {
		return err
	}
	return dipErrors.NewUnknownError(err).WithContext("event", event)
}

func (c *Client) fireEvent(ctx context.Context, event string, payload interface{}) error {
	taskNames, ok := c.registry.TasksFor(event)
	if !ok {
		return dipErrors.NewEventNotFoundError(event)
	}

	validated, err := c.parsePayload(event, event, payload)
	if err != nil {
		return err
	}

	return c.sender.SendEvent(ctx, transport.EventFire{
		Name:      event,
		Payload:   validated,
		TaskNames: taskNames,
	}, c.metadata)
}

// CallTask runs task's handler with a step controller bound to a private
// copy of stack. Every settled step forwards the whole ledger to the
// collector. Handler errors are returned as they were raised; the
// returned Invocation is non-nil whenever the handler ran.
func (c *Client) CallTask(ctx context.Context, task string, payload interface{}, stack ledger.Stack) (*Invocation, error) {
	binding, ok := c.registry.Task(task)
	if !ok {
		return nil, dipErrors.NewTaskNotFoundError(task)
	}

	validated, err := c.parsePayload(binding.Event, task, payload)
	if err != nil {
		return nil, err
	}
	if err := stack.Validate(); err != nil {
		return nil, dipErrors.New(dipErrors.CodeBadRequest, "Invalid stack").WithOriginalError(err)
	}

	logger.Op.Infof("Calling task %q from event %q", task, binding.Event)

	run := step.NewRun(task, binding.Event, validated, stack, c.forwarder())
	result, err := binding.Handler(ctx, run)
	invocation := &Invocation{
		Task:   task,
		Event:  binding.Event,
		Result: result,
		Stack:  run.Stack(),
	}
	if err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"task":  task,
			"error": dipErrors.DisplayErrorSummary(err),
		}).Warn("Task failed")
		return invocation, err
	}

	succeeded, failed := invocation.Stack.Summary()
	logger.Op.Debugf("Task %q finished: %d step(s) succeeded, %d failed", task, succeeded, failed)
	return invocation, nil
}

func (c *Client) forwarder() step.Forwarder {
	return step.ForwarderFunc(func(ctx context.Context, stack ledger.Stack) error {
		return c.sender.SendStack(ctx, stack, c.metadata)
	})
}

// parsePayload validates payload against the schema of event. target names
// the event or task in the error message.
func (c *Client) parsePayload(event, target string, payload interface{}) (json.RawMessage, error) {
	raw, err := validation.Normalize(payload)
	if err != nil {
		return nil, dipErrors.NewInvalidPayloadError(target, err)
	}
	result := validation.Validate(c.registry.Schema(event), raw)
	if !result.Success {
		return nil, dipErrors.NewInvalidPayloadError(target, result.Err)
	}
	return result.Data, nil
}
