package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes transition events to a NATS subject per run:
// rfpflow.run.<run-id>.transition.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the given NATS URL.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("rfpflow"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	subject := fmt.Sprintf("rfpflow.run.%s.transition", event.RunID)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Flush(); err != nil {
		p.conn.Close()
		return err
	}
	p.conn.Close()
	return nil
}
