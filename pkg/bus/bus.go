// Package bus publishes adapter lifecycle events over NATS JetStream so
// downstream pipeline stages can react without polling the journal.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects emitted by the gateway.
const (
	SubjectNetbootDisabled = "provsync.netboot.disabled"
	SubjectPreseedCreated  = "provsync.preseed.created"
	SubjectPreseedUpdated  = "provsync.preseed.updated"
)

// Event is the envelope for every published message.
type Event struct {
	Subject string         `json:"subject"`
	Target  string         `json:"target"`
	At      time.Time      `json:"at"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// Bus wraps a NATS JetStream connection. A nil *Bus is valid and drops
// every publish, so callers can wire events in unconditionally.
type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Connect dials the NATS endpoint and opens a JetStream context.
func Connect(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &Bus{conn: nc, js: js}, nil
}

// Close drains and shuts down the connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Publish emits an event on its subject. The subject on the envelope is
// authoritative; an empty one is rejected.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if b == nil {
		return nil
	}
	if ev.Subject == "" {
		return errors.New("event subject is required")
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	_, err = b.js.Publish(ev.Subject, data, nats.Context(ctx))
	return err
}
