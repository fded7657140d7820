package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice/internal/models"
)

const paymentReviewsSchema = `CREATE TABLE IF NOT EXISTS payment_reviews (
	id UUID PRIMARY KEY,
	enrollment_id TEXT NOT NULL,
	is_package BOOLEAN NOT NULL DEFAULT FALSE,
	from_status TEXT NOT NULL,
	to_status TEXT NOT NULL,
	price NUMERIC(12,2) NOT NULL DEFAULT 0,
	reviewer_id TEXT NOT NULL,
	request_id TEXT NOT NULL DEFAULT '',
	reviewed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payment_reviews_enrollment ON payment_reviews (enrollment_id, reviewed_at DESC)`

// PaymentReviewRepository persists the payment review ledger.
type PaymentReviewRepository struct {
	db *sqlx.DB
}

// NewPaymentReviewRepository creates a new instance of PaymentReviewRepository.
func NewPaymentReviewRepository(db *sqlx.DB) *PaymentReviewRepository {
	return &PaymentReviewRepository{db: db}
}

// EnsureSchema creates the ledger table when missing.
func (r *PaymentReviewRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, paymentReviewsSchema); err != nil {
		return fmt.Errorf("ensure payment_reviews schema: %w", err)
	}
	return nil
}

// Create inserts a review, assigning ID and ReviewedAt when empty.
func (r *PaymentReviewRepository) Create(ctx context.Context, review *models.PaymentReview) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.ReviewedAt.IsZero() {
		review.ReviewedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payment_reviews (id, enrollment_id, is_package, from_status, to_status, price, reviewer_id, request_id, reviewed_at) VALUES (:id, :enrollment_id, :is_package, :from_status, :to_status, :price, :reviewer_id, :request_id, :reviewed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		return fmt.Errorf("insert payment review: %w", err)
	}
	return nil
}

// ListByEnrollment returns the reviews of one enrollment, newest first.
func (r *PaymentReviewRepository) ListByEnrollment(ctx context.Context, enrollmentID string, limit int) ([]models.PaymentReview, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, enrollment_id, is_package, from_status, to_status, price, reviewer_id, request_id, reviewed_at FROM payment_reviews WHERE enrollment_id = $1 ORDER BY reviewed_at DESC LIMIT $2`
	var reviews []models.PaymentReview
	if err := r.db.SelectContext(ctx, &reviews, query, enrollmentID, limit); err != nil {
		return nil, fmt.Errorf("list payment reviews: %w", err)
	}
	return reviews, nil
}

// Ping checks connectivity for the readiness check.
func (r *PaymentReviewRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
