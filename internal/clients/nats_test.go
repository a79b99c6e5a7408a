package clients

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNATSProducer(t *testing.T) {
	t.Run("invalid address", func(t *testing.T) {
		producer, err := NewNATSProducer("invalid://address")
		assert.Error(t, err)
		assert.Nil(t, producer)
		assert.Contains(t, err.Error(), "failed to connect to NATS server")
	})

	t.Run("nil producer close is a no-op", func(t *testing.T) {
		var p *NATSProducer
		assert.NotPanics(t, p.Close)
	})
}
