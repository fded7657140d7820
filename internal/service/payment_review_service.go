package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/internal/repository"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/jobs"
)

type paymentReviewStore interface {
	Create(ctx context.Context, review *models.PaymentReview) error
	ListByEnrollment(ctx context.Context, enrollmentID string, limit int) ([]models.PaymentReview, error)
}

type paymentEventPublisher interface {
	PublishPaymentStatusChanged(ctx context.Context, evt models.PaymentStatusChangedEvent) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// PaymentReviewService keeps the review ledger and hands confirmed changes
// to the event queue. Both are optional; failures are logged and never
// undo a confirmed change.
type PaymentReviewService struct {
	store   paymentReviewStore
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewPaymentReviewService constructs the service. store may be nil when
// the ledger is disabled.
func NewPaymentReviewService(store paymentReviewStore, metrics *MetricsService, logger *zap.Logger) *PaymentReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentReviewService{store: store, metrics: metrics, logger: logger, now: time.Now}
}

// AttachQueue enables event publishing through q.
func (s *PaymentReviewService) AttachQueue(q jobEnqueuer) {
	s.queue = q
}

// Record stores change in the ledger and enqueues its event.
func (s *PaymentReviewService) Record(ctx context.Context, change PaymentChange) {
	if s == nil {
		return
	}
	review := &models.PaymentReview{
		ID:           uuid.NewString(),
		EnrollmentID: change.Enrollment.ID,
		IsPackage:    change.Enrollment.IsPackage,
		FromStatus:   change.From,
		ToStatus:     change.To,
		Price:        change.Enrollment.Price,
		ReviewerID:   change.ReviewerID,
		RequestID:    change.RequestID,
		ReviewedAt:   s.now().UTC(),
	}

	if s.store != nil {
		start := time.Now()
		err := s.store.Create(ctx, review)
		s.metrics.ObserveDBQuery("create_payment_review", time.Since(start))
		if err != nil {
			s.logger.Warn("payment review not recorded", zap.String("enrollment_id", review.EnrollmentID), zap.Error(err))
		}
	}

	if s.queue == nil {
		return
	}
	evt := models.PaymentStatusChangedEvent{
		ReviewID:     review.ID,
		EnrollmentID: review.EnrollmentID,
		ItemID:       change.Enrollment.ItemID,
		ItemName:     change.Enrollment.ItemName,
		IsPackage:    review.IsPackage,
		StudentEmail: change.Enrollment.StudentEmail,
		StudentPhone: change.Enrollment.StudentPhone,
		FromStatus:   review.FromStatus,
		ToStatus:     review.ToStatus,
		ReviewedAt:   review.ReviewedAt,
	}
	job := jobs.Job{ID: review.ID, Type: repository.PaymentEventType, Payload: evt}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("payment event not queued", zap.String("review_id", review.ID), zap.Error(err))
	}
}

// History lists the reviews of one enrollment, newest first.
func (s *PaymentReviewService) History(ctx context.Context, enrollmentID string, limit int) ([]models.PaymentReview, error) {
	if s.store == nil {
		return []models.PaymentReview{}, nil
	}
	start := time.Now()
	reviews, err := s.store.ListByEnrollment(ctx, enrollmentID, limit)
	s.metrics.ObserveDBQuery("list_payment_reviews", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payment reviews")
	}
	if reviews == nil {
		reviews = []models.PaymentReview{}
	}
	return reviews, nil
}

// PaymentEventHandler publishes queued payment events.
func PaymentEventHandler(publisher paymentEventPublisher, metrics *MetricsService, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		evt, ok := job.Payload.(models.PaymentStatusChangedEvent)
		if !ok {
			logger.Error("unexpected payment event payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
			return nil
		}
		err := publisher.PublishPaymentStatusChanged(ctx, evt)
		metrics.RecordEventPublish(err)
		if err == nil {
			logger.Debug("payment event published", zap.String("review_id", evt.ReviewID), zap.Int("attempt", job.Attempt))
		}
		return err
	}
}
