package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/terradex/stacintake/internal/core/domain"
)

// Subscriber consumes intake requests and published items from NATS
// JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeIntakeRequests delivers each intake request to the handler. A
// handler error triggers redelivery up to the MaxDeliver bound.
func (s *Subscriber) SubscribeIntakeRequests(ctx context.Context, handler func(ctx context.Context, req *domain.IntakeRequest) error) error {
	sub, err := s.js.Subscribe(SubjectIntakeRequests, func(msg *nats.Msg) {
		var req domain.IntakeRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &req); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("intake-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeItems delivers each published STAC item, as raw JSON, to the
// handler. Items failing with an input or validation error are terminated
// instead of redelivered, since the same payload fails the same way every
// time.
func (s *Subscriber) SubscribeItems(ctx context.Context, handler func(ctx context.Context, raw []byte) error) error {
	sub, err := s.js.Subscribe(SubjectItemsPrefix+">", func(msg *nats.Msg) {
		if err := handler(ctx, msg.Data); err != nil {
			if terminalError(err) {
				_ = msg.Term()
				return
			}
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("catalog-ingest"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// terminalError reports whether a handler error is deterministic, so that
// redelivering the message can never succeed.
func terminalError(err error) bool {
	var inputErr *domain.InputError
	var validationErr *domain.ValidationError
	return errors.As(err, &inputErr) || errors.As(err, &validationErr)
}

// Conn exposes the underlying connection for readiness checks.
func (s *Subscriber) Conn() *nats.Conn { return s.conn }

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
