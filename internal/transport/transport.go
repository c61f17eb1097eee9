// Package transport carries events and step ledgers to the remote
// collector. Every outbound message is tagged with the client metadata.
package transport

import (
	"context"
	"encoding/json"

	"github.com/maxkimambo/plz/internal/ledger"
)

const (
	HeaderClientID      = "X-DIP-CLIENT-ID"
	HeaderClientName    = "X-DIP-CLIENT-NAME"
	HeaderClientVersion = "X-DIP-CLIENT-VERSION"
)

// Metadata identifies the client application on every send.
type Metadata struct {
	ClientID      string `json:"clientId"`
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

// EventFire is the wire shape of a fired event.
type EventFire struct {
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	TaskNames []string        `json:"taskNames"`
}

// Sender is the capability the engine uses to reach the collector.
type Sender interface {
	SendEvent(ctx context.Context, event EventFire, meta Metadata) error
	SendStack(ctx context.Context, stack ledger.Stack, meta Metadata) error
}

// Discard drops everything. Useful when no collector is configured.
type Discard struct{}

func (Discard) SendEvent(ctx context.Context, event EventFire, meta Metadata) error {
	return nil
}

func (Discard) SendStack(ctx context.Context, stack ledger.Stack, meta Metadata) error {
	return nil
}
