package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/pkg/config"
)

// PaymentEventType is the message type of confirmed status changes.
const PaymentEventType = "payment.status_changed"

// amqpChannel is the subset of *amqp.Channel the publisher needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes payment events to a durable queue.
type RabbitMQPublisher struct {
	conn      *amqp.Connection
	ch        amqpChannel
	queueName string
	cb        *gobreaker.CircuitBreaker
}

// NewRabbitMQPublisher dials the broker and declares the queue.
func NewRabbitMQPublisher(amqpURL, queueName string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	return &RabbitMQPublisher{
		conn:      conn,
		ch:        ch,
		queueName: queueName,
		cb:        config.NewCircuitBreaker("rabbitmq-publisher", logger, nil),
	}, nil
}

func newPublisherWithChannel(ch amqpChannel, queueName string, logger *zap.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{ch: ch, queueName: queueName, cb: config.NewCircuitBreaker("rabbitmq-publisher", logger, nil)}
}

// PublishPaymentStatusChanged sends evt as a persistent JSON message.
func (p *RabbitMQPublisher) PublishPaymentStatusChanged(ctx context.Context, evt models.PaymentStatusChangedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal payment event: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		return ctx.Err()
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.ch.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         PaymentEventType,
			MessageId:    evt.ReviewID,
			Timestamp:    evt.ReviewedAt,
			Body:         body,
		})
	})
	return err
}

// Close shuts the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
