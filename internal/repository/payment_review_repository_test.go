package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice/internal/models"
)

func newReviewRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPaymentReviewRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newReviewRepoMock(t)
	defer cleanup()
	repo := NewPaymentReviewRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payment_reviews")).
		WithArgs(sqlmock.AnyArg(), "e1", false, "pending", "paid", 150.0, "admin-1", "req-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	review := &models.PaymentReview{
		EnrollmentID: "e1",
		FromStatus:   models.PaymentStatusPending,
		ToStatus:     models.PaymentStatusPaid,
		Price:        150,
		ReviewerID:   "admin-1",
		RequestID:    "req-1",
	}
	require.NoError(t, repo.Create(context.Background(), review))
	assert.NotEmpty(t, review.ID)
	assert.False(t, review.ReviewedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentReviewRepositoryListByEnrollment(t *testing.T) {
	db, mock, cleanup := newReviewRepoMock(t)
	defer cleanup()
	repo := NewPaymentReviewRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "is_package", "from_status", "to_status", "price", "reviewer_id", "request_id", "reviewed_at"}).
		AddRow("r2", "e1", false, "failed", "paid", 150.0, "admin-1", "", now).
		AddRow("r1", "e1", false, "pending", "failed", 150.0, "admin-1", "", now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, enrollment_id, is_package, from_status, to_status, price, reviewer_id, request_id, reviewed_at FROM payment_reviews WHERE enrollment_id = $1 ORDER BY reviewed_at DESC LIMIT $2")).
		WithArgs("e1", 50).
		WillReturnRows(rows)

	reviews, err := repo.ListByEnrollment(context.Background(), "e1", 0)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, models.PaymentStatusPaid, reviews[0].ToStatus)
	assert.Equal(t, models.PaymentStatusPending, reviews[1].FromStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentReviewRepositoryEnsureSchema(t *testing.T) {
	db, mock, cleanup := newReviewRepoMock(t)
	defer cleanup()
	repo := NewPaymentReviewRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS payment_reviews")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
