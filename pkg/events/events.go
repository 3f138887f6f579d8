// Package events fans domain events out to NATS subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectAudit    = "grc.audit"
	SubjectWorkflow = "grc.workflow"
	SubjectReport   = "grc.report"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close() error
}

type Settings struct {
	URL  string
	Name string
}

// NewPublisher connects to NATS. An empty URL yields a publisher that drops events.
func NewPublisher(settings Settings) (Publisher, error) {
	if settings.URL == "" {
		return Noop{}, nil
	}
	name := settings.Name
	if name == "" {
		name = "grc-admin"
	}
	conn, err := nats.Connect(settings.URL,
		nats.Name(name),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &natsPublisher{conn: conn}, nil
}

type natsPublisher struct {
	conn *nats.Conn
}

// Publish encodes payload as JSON. NATS publish is fire-and-forget, so ctx is only checked up front.
func (p *natsPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

func (p *natsPublisher) Close() error {
	return p.conn.Drain()
}

type Noop struct{}

func (Noop) Publish(context.Context, string, any) error {
	return nil
}

func (Noop) Close() error {
	return nil
}
