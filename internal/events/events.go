package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Publisher delivers encoded events to a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NatsPublisher publishes events on a NATS connection
type NatsPublisher struct {
	nc *nats.Conn
}

// NewNatsPublisher wraps an established NATS connection
func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

// Connect dials the NATS server at url and returns a publisher with its cleanup function
func Connect(url, name string) (*NatsPublisher, func(), error) {
	nc, err := nats.Connect(url, nats.Name(name))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	cleanup := func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return NewNatsPublisher(nc), cleanup, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.nc.Publish(subject, data)
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, []byte) error { return nil }
