package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/internal/repository"
	"github.com/noah-isme/course-backoffice/pkg/jobs"
)

type fakeReviewStore struct {
	created []models.PaymentReview
	list    []models.PaymentReview
	err     error
}

func (f *fakeReviewStore) Create(ctx context.Context, review *models.PaymentReview) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *review)
	return nil
}

func (f *fakeReviewStore) ListByEnrollment(ctx context.Context, enrollmentID string, limit int) ([]models.PaymentReview, error) {
	return f.list, f.err
}

type fakeQueue struct {
	jobs []jobs.Job
}

func (f *fakeQueue) Enqueue(job jobs.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}

type fakePublisher struct {
	events []models.PaymentStatusChangedEvent
	err    error
}

func (f *fakePublisher) PublishPaymentStatusChanged(ctx context.Context, evt models.PaymentStatusChangedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, evt)
	return nil
}

func sampleChange() PaymentChange {
	return PaymentChange{
		Enrollment: models.Enrollment{ID: "e1", ItemID: "c1", ItemName: "Math", Price: 150, StudentEmail: "s@example.com"},
		From:       models.PaymentStatusPending,
		To:         models.PaymentStatusPaid,
		ReviewerID: "admin-1",
		RequestID:  "req-1",
	}
}

func TestPaymentReviewServiceRecord(t *testing.T) {
	store := &fakeReviewStore{}
	queue := &fakeQueue{}
	svc := NewPaymentReviewService(store, nil, nil)
	svc.AttachQueue(queue)
	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	svc.Record(context.Background(), sampleChange())

	require.Len(t, store.created, 1)
	review := store.created[0]
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "e1", review.EnrollmentID)
	assert.Equal(t, models.PaymentStatusPending, review.FromStatus)
	assert.Equal(t, models.PaymentStatusPaid, review.ToStatus)
	assert.Equal(t, 150.0, review.Price)
	assert.Equal(t, fixed, review.ReviewedAt)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, repository.PaymentEventType, queue.jobs[0].Type)
	evt, ok := queue.jobs[0].Payload.(models.PaymentStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, review.ID, evt.ReviewID)
	assert.Equal(t, "Math", evt.ItemName)
}

func TestPaymentReviewServiceLedgerFailureStillQueues(t *testing.T) {
	store := &fakeReviewStore{err: errors.New("db down")}
	queue := &fakeQueue{}
	svc := NewPaymentReviewService(store, nil, nil)
	svc.AttachQueue(queue)

	svc.Record(context.Background(), sampleChange())
	assert.Len(t, queue.jobs, 1)

	_, err := svc.History(context.Background(), "e1", 10)
	assert.Error(t, err)
}

func TestPaymentReviewServiceDisabled(t *testing.T) {
	svc := NewPaymentReviewService(nil, nil, nil)
	svc.Record(context.Background(), sampleChange())

	reviews, err := svc.History(context.Background(), "e1", 10)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	var nilSvc *PaymentReviewService
	nilSvc.Record(context.Background(), sampleChange())
}

func TestPaymentEventHandler(t *testing.T) {
	publisher := &fakePublisher{}
	handler := PaymentEventHandler(publisher, NewMetricsService(), nil)

	evt := models.PaymentStatusChangedEvent{ReviewID: "r1"}
	require.NoError(t, handler(context.Background(), jobs.Job{ID: "r1", Payload: evt}))
	assert.Equal(t, []models.PaymentStatusChangedEvent{evt}, publisher.events)

	require.NoError(t, handler(context.Background(), jobs.Job{ID: "bad", Payload: "nope"}))

	publisher.err = errors.New("breaker open")
	assert.Error(t, handler(context.Background(), jobs.Job{ID: "r2", Payload: evt}))
}
