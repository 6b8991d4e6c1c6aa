// Package amqpevents consumes worker completion events from RabbitMQ and feeds
// them to the callback correlator.
package amqpevents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/StefanUPB/tng-gtk-common/config"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
	"github.com/StefanUPB/tng-gtk-common/internal/service"
)

// Ingester records a completion event.
type Ingester interface {
	Ingest(ctx context.Context, event model.CallbackEvent) (model.ProcessRecord, error)
}

// Outcome is what happened to a delivery.
type Outcome string

// Delivery outcomes.
const (
	OutcomeAcked    Outcome = "acked"
	OutcomeRejected Outcome = "rejected"
	OutcomeRequeued Outcome = "requeued"
)

// ConsumerOptions groups dependencies for Consumer.
type ConsumerOptions struct {
	Config   config.EventsConfig
	Ingester Ingester // Required
	Logger   *slog.Logger
}

// Consumer reads completion events from a durable queue with manual acks.
type Consumer struct {
	cfg      config.EventsConfig
	ingester Ingester
	logger   *slog.Logger
}

// NewConsumer constructs a Consumer.
func NewConsumer(opts ConsumerOptions) (*Consumer, error) {
	if opts.Ingester == nil {
		return nil, errors.New("ingester is required")
	}
	if opts.Config.Queue == "" {
		return nil, errors.New("queue name is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:      opts.Config,
		ingester: opts.Ingester,
		logger:   logger.With("component", "amqp_events", "queue", opts.Config.Queue),
	}, nil
}

// Run dials the broker and consumes until ctx is canceled or the broker
// closes the delivery channel. Returns nil on graceful shutdown.
func (c *Consumer) Run(ctx context.Context) error {
	if !c.cfg.IsConfigured() {
		return errors.New("AMQP_URL is not set")
	}

	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	deliveries, err := c.subscribe(ch)
	if err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "consuming completion events", "prefetch", c.cfg.Prefetch)
	return c.Serve(ctx, deliveries)
}

func (c *Consumer) subscribe(ch *amqp.Channel) (<-chan amqp.Delivery, error) {
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set prefetch: %w", err)
	}
	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}
	deliveries, err := ch.Consume(c.cfg.Queue, c.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}
	return deliveries, nil
}

// Serve handles deliveries until ctx is done or the channel closes.
func (c *Consumer) Serve(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "event consumer stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("delivery channel closed by broker")
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle validates and ingests one delivery, then settles it.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) Outcome {
	outcome := c.process(ctx, d.Body)

	var err error
	switch outcome {
	case OutcomeAcked:
		err = d.Ack(false)
	case OutcomeRejected:
		err = d.Nack(false, false)
	default:
		err = d.Nack(false, true)
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to settle delivery",
			"delivery_tag", d.DeliveryTag, "outcome", outcome, "error", err)
	}
	return outcome
}

func (c *Consumer) process(ctx context.Context, body []byte) Outcome {
	event, err := service.ValidateEvent(body)
	if err != nil {
		c.logger.WarnContext(ctx, "discarding malformed event", "error", err)
		return OutcomeRejected
	}

	rec, err := c.ingester.Ingest(ctx, event)
	switch {
	case err == nil:
		c.logger.DebugContext(ctx, "event ingested", "process_id", rec.ProcessID, "status", rec.Status)
		return OutcomeAcked
	case apperrors.IsValidation(err):
		c.logger.WarnContext(ctx, "discarding invalid event", "process_id", event.CorrelationID(), "error", err)
		return OutcomeRejected
	default:
		c.logger.ErrorContext(ctx, "failed to ingest event, requeueing",
			"process_id", event.CorrelationID(), "error", err)
		return OutcomeRequeued
	}
}
