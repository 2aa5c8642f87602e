// Package mq is a thin RabbitMQ layer over amqp091-go.
//
// A Publisher sends JSON messages to one durable exchange. A Consumer binds
// one durable queue to that exchange and hands deliveries to a handler with
// manual acks: a handler error requeues the message.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// ExchangeTopic routes on dotted keys with * and # wildcards.
const ExchangeTopic = "topic"

// publishChannel is the part of *amqp.Channel the publisher needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	conn     *amqp.Connection
	channel  publishChannel
	exchange string
	log      *logrus.Logger
}

// NewPublisher dials url and declares a durable exchange of the given kind.
func NewPublisher(url, exchange, kind string, log *logrus.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareExchange(ch, exchange, kind); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	log.WithFields(logrus.Fields{"exchange": exchange, "kind": kind}).Info("mq publisher ready")
	return &Publisher{conn: conn, channel: ch, exchange: exchange, log: log}, nil
}

func declareExchange(ch *amqp.Channel, exchange, kind string) error {
	// durable, not auto-deleted, not internal, wait for the broker
	if err := ch.ExchangeDeclare(exchange, kind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

func (p *Publisher) Exchange() string {
	return p.exchange
}

// Publish marshals message to JSON and sends it as a persistent message.
// Each message gets a fresh id so consumers can deduplicate redeliveries.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.log.WithField("routing_key", routingKey).Debug("message published")
	return nil
}

func (p *Publisher) Close() error {
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// Handler processes one message. Returning an error requeues it.
type Handler func(ctx context.Context, routingKey string, body []byte) error

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *logrus.Logger
}

// NewConsumer declares the exchange and a durable queue and binds the queue
// with every routing key (wildcards allowed on topic exchanges).
func NewConsumer(url, exchange, kind, queue string, routingKeys []string, log *logrus.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	fail := func(err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	if err := declareExchange(ch, exchange, kind); err != nil {
		return fail(err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("declare queue %s: %w", queue, err))
	}
	for _, key := range routingKeys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return fail(fmt.Errorf("bind queue %s to %s: %w", q.Name, key, err))
		}
	}

	log.WithFields(logrus.Fields{"queue": q.Name, "keys": routingKeys}).Info("mq consumer ready")
	return &Consumer{conn: conn, channel: ch, queue: q.Name, log: log}, nil
}

// Consume blocks until ctx is done or the broker closes the channel.
// Prefetch is one, so a slow handler never hoards messages.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	return c.loop(ctx, msgs, handler)
}

func (c *Consumer) loop(ctx context.Context, msgs <-chan amqp.Delivery, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.dispatch(ctx, msg, handler)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg amqp.Delivery, handler Handler) {
	entry := c.log.WithFields(logrus.Fields{
		"queue":       c.queue,
		"routing_key": msg.RoutingKey,
		"message_id":  msg.MessageId,
	})

	if err := handler(ctx, msg.RoutingKey, msg.Body); err != nil {
		entry.WithError(err).Warn("message handling failed, requeueing")
		if nackErr := msg.Nack(false, true); nackErr != nil {
			entry.WithError(nackErr).Error("nack failed")
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		entry.WithError(err).Error("ack failed")
	}
}

func (c *Consumer) Close() error {
	var errs []error
	if c.channel != nil {
		errs = append(errs, c.channel.Close())
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	return errors.Join(errs...)
}
