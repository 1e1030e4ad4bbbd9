package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/terradex/stacintake/internal/core/domain"
)

// Subjects and streams of the intake pipeline.
const (
	SubjectIntakeRequests = "stac.intake.requests"
	SubjectItemsPrefix    = "stac.items."
	SubjectOutcomes       = "stac.outcomes"
)

// Publisher implements ports.ItemPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream, and ensures the pipeline
// streams exist.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	streams := []nats.StreamConfig{
		{
			Name:      "STAC_INTAKE",
			Subjects:  []string{"stac.intake.>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "STAC_ITEMS",
			Subjects:  []string{"stac.items.>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try an update instead.
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishItem hands a validated catalog record to the bus, keyed by its
// collection.
func (p *Publisher) PublishItem(ctx context.Context, item *domain.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectItemsPrefix+item.Collection, data)
	return err
}

// PublishOutcome broadcasts a batch outcome for consumers that track intake
// results.
func (p *Publisher) PublishOutcome(ctx context.Context, outcome *domain.Outcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectOutcomes, data)
}

// Conn exposes the underlying connection for readiness checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
