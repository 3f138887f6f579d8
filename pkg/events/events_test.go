package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisher(t *testing.T) {
	t.Run("empty url", func(t *testing.T) {
		p, err := NewPublisher(Settings{})
		require.NoError(t, err)
		assert.IsType(t, Noop{}, p)
		assert.NoError(t, p.Publish(context.Background(), SubjectAudit, map[string]string{"id": "1"}))
		assert.NoError(t, p.Close())
	})

	t.Run("unreachable server", func(t *testing.T) {
		p, err := NewPublisher(Settings{URL: "nats://127.0.0.1:1"})
		assert.Error(t, err)
		assert.Nil(t, p)
	})
}

func TestNatsPublisher_CancelledContext(t *testing.T) {
	p := &natsPublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, SubjectWorkflow, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
