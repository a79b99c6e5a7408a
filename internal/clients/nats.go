package clients

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSProducer publishes JSON events for downstream consumers.
type NATSProducer struct {
	conn *nats.Conn
}

func NewNATSProducer(address string) (*NATSProducer, error) {
	conn, err := nats.Connect(address, nats.Name("splitpay-api"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS server: %w", err)
	}
	return &NATSProducer{conn: conn}, nil
}

func (p *NATSProducer) Publish(subject string, message any) error {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := p.conn.Publish(subject, msgBytes); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	slog.Debug("published event", "subject", subject)
	return nil
}

func (p *NATSProducer) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
