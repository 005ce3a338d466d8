// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/sudaredd/data-platform-core/internal/ingest"
	"github.com/sudaredd/data-platform-core/internal/logging"
	"github.com/sudaredd/data-platform-core/internal/record"
	"github.com/sudaredd/data-platform-core/internal/recordjson"
	"github.com/sudaredd/data-platform-core/internal/tenant"
)

// Config configures the durable JetStream subscriber (spec §5, async ingest).
type Config struct {
	URL           string
	Topic         string
	DurableName   string
	QueueGroup    string
	MaxReconnects int
	ReconnectWait time.Duration
	MaxDeliver    int
	MaxAckPending int
	AckWait       time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxReconnects == 0 {
		c.MaxReconnects = -1
	}
	if c.ReconnectWait == 0 {
		c.ReconnectWait = 2 * time.Second
	}
	if c.MaxDeliver == 0 {
		c.MaxDeliver = 5
	}
	if c.MaxAckPending == 0 {
		c.MaxAckPending = 256
	}
	if c.AckWait == 0 {
		c.AckWait = 30 * time.Second
	}
}

// Subscriber consumes IngestMessage batches off a durable JetStream topic
// and feeds them to an ingest.Engine. A message is acked once IngestBatch
// returns without error and nacked back for JetStream redelivery (per
// MaxDeliver) when IngestBatch fails; a message that does not decode or
// fails Validate is acked and dropped without redelivery.
type Subscriber struct {
	subscriber message.Subscriber
	topic      string
	engine     *ingest.Engine
	logger     watermill.LoggerAdapter
}

// NewSubscriber dials the configured NATS JetStream endpoint and builds a
// durable queue-group subscriber for cfg.Topic.
func NewSubscriber(cfg Config, engine *ingest.Engine) (*Subscriber, error) {
	cfg.applyDefaults()
	logger := watermill.NewStdLogger(false, false)

	wmConfig := wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   cfg.AckWait,
		NatsOptions: []natsgo.Option{
			natsgo.RetryOnFailedConnect(true),
			natsgo.MaxReconnects(cfg.MaxReconnects),
			natsgo.ReconnectWait(cfg.ReconnectWait),
		},
		Unmarshaler: &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.MaxDeliver(cfg.MaxDeliver),
				natsgo.MaxAckPending(cfg.MaxAckPending),
				natsgo.AckWait(cfg.AckWait),
				natsgo.DeliverNew(),
			},
			DurablePrefix: cfg.DurableName,
		},
	}

	sub, err := wmNats.NewSubscriber(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("bus: create subscriber: %w", err)
	}

	return &Subscriber{subscriber: sub, topic: cfg.Topic, engine: engine, logger: logger}, nil
}

// Serve implements suture.Service: it subscribes to the configured topic
// and processes messages until ctx is canceled.
func (s *Subscriber) Serve(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topic)
	if err != nil {
		return fmt.Errorf("bus: subscribe to %s: %w", s.topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			s.process(ctx, msg)
		}
	}
}

func (s *Subscriber) process(ctx context.Context, msg *message.Message) {
	var in IngestMessage
	if err := json.Unmarshal(msg.Payload, &in); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("message_uuid", msg.UUID).Msg("bus: malformed ingest message, dropping")
		msg.Ack()
		return
	}
	if err := in.Validate(); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("message_uuid", msg.UUID).Msg("bus: invalid ingest message, dropping")
		msg.Ack()
		return
	}

	records := make([]record.Record, len(in.Data))
	for i, m := range in.Data {
		records[i] = recordjson.FromJSON(m)
	}

	err := s.engine.IngestBatch(ctx, ingest.Request{
		TenantID:    in.TenantID,
		Periodicity: tenant.Periodicity(in.Periodicity),
		DataType:    tenant.DataType(in.DataType),
		Data:        records,
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("tenant_id", in.TenantID).Str("message_uuid", msg.UUID).Msg("bus: ingest failed, nacking for redelivery")
		msg.Nack()
		return
	}
	msg.Ack()
}

// String implements fmt.Stringer for supervisor logging.
func (s *Subscriber) String() string { return "bus-subscriber:" + s.topic }

// Close releases the underlying NATS connection.
func (s *Subscriber) Close() error {
	return s.subscriber.Close()
}
