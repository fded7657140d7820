package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice/internal/models"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestRabbitMQPublisherPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	pub := newPublisherWithChannel(ch, "payment.status_changed", nil)

	evt := models.PaymentStatusChangedEvent{
		ReviewID:     "r1",
		EnrollmentID: "e1",
		FromStatus:   models.PaymentStatusPending,
		ToStatus:     models.PaymentStatusPaid,
		ReviewedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.PublishPaymentStatusChanged(context.Background(), evt))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "payment.status_changed", ch.keys[0])
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, PaymentEventType, msg.Type)
	assert.Equal(t, "r1", msg.MessageId)

	var decoded models.PaymentStatusChangedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, models.PaymentStatusPaid, decoded.ToStatus)
}

func TestRabbitMQPublisherOpensBreakerAfterFailures(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	pub := newPublisherWithChannel(ch, "q", nil)

	for i := 0; i < 3; i++ {
		require.Error(t, pub.PublishPaymentStatusChanged(context.Background(), models.PaymentStatusChangedEvent{}))
	}

	ch.err = nil
	err := pub.PublishPaymentStatusChanged(context.Background(), models.PaymentStatusChangedEvent{})
	require.Error(t, err)
	assert.Empty(t, ch.published)
}
