package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/internal/repository"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/middleware/requestid"
)

type paymentsRepository interface {
	List(ctx context.Context, token string, q models.PageQuery) (repository.Page[models.Enrollment], error)
	UpdatePaymentStatus(ctx context.Context, token, id string, status models.PaymentStatus) error
}

// PaymentChange is a confirmed payment status change.
type PaymentChange struct {
	Enrollment models.Enrollment
	From       models.PaymentStatus
	To         models.PaymentStatus
	ReviewerID string
	RequestID  string
}

type paymentChangeRecorder interface {
	Record(ctx context.Context, change PaymentChange)
}

// BoardRow is one enrollment with the status changes offered for it.
type BoardRow struct {
	models.Enrollment
	Transitions []models.PaymentStatus `json:"transitions"`
}

// BoardView is a consistent snapshot of a payments board.
type BoardView struct {
	Items      []BoardRow               `json:"items"`
	Pagination *models.Pagination       `json:"pagination"`
	Summary    models.EnrollmentSummary `json:"summary"`
	Query      models.PageQuery         `json:"query"`
	Generation uint64                   `json:"generation"`
	Error      *appErrors.Error         `json:"error,omitempty"`
	Busy       bool                     `json:"busy"`
	// Stale is set on the view returned to a request whose response was
	// discarded because a newer one had been issued.
	Stale bool `json:"stale,omitempty"`
}

// PaymentsBoard is one admin's paginated payments list. Every fetch takes a
// generation number; a response is applied only if no newer fetch has been
// issued since, and the superseded request's context is cancelled. Only one
// status change may run at a time.
type PaymentsBoard struct {
	repo     paymentsRepository
	recorder paymentChangeRecorder
	metrics  *MetricsService
	logger   *zap.Logger
	maxLimit int

	mu         sync.Mutex
	query      models.PageQuery
	items      []models.Enrollment
	pagination *models.Pagination
	loadErr    *appErrors.Error
	issued     uint64
	applied    uint64
	cancel     context.CancelFunc
	mutating   bool
}

// NewPaymentsBoard constructs an empty board. recorder may be nil.
func NewPaymentsBoard(repo paymentsRepository, recorder paymentChangeRecorder, metrics *MetricsService, pageSize, maxPageSize int, logger *zap.Logger) *PaymentsBoard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &PaymentsBoard{
		repo:     repo,
		recorder: recorder,
		metrics:  metrics,
		logger:   logger,
		maxLimit: maxPageSize,
		query:    models.DefaultPageQuery(pageSize),
	}
}

// View returns the current snapshot without fetching.
func (b *PaymentsBoard) View() BoardView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

// Query returns the query the board last issued.
func (b *PaymentsBoard) Query() models.PageQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Load fetches q. A change of search, status or sort compared with the
// current query starts again at page 1.
func (b *PaymentsBoard) Load(ctx context.Context, token string, q models.PageQuery) (BoardView, error) {
	b.mu.Lock()
	current := b.query
	b.mu.Unlock()

	q = q.Normalize(current.Limit, b.maxLimit)
	if q.Search != current.Search || q.Status != current.Status || q.SortBy != current.SortBy || q.SortOrder != current.SortOrder {
		q.Page = 1
	}
	return b.fetch(ctx, token, q)
}

// Refresh re-fetches the current query.
func (b *PaymentsBoard) Refresh(ctx context.Context, token string) (BoardView, error) {
	return b.fetch(ctx, token, b.Query())
}

// Search filters by text and returns to page 1.
func (b *PaymentsBoard) Search(ctx context.Context, token, text string) (BoardView, error) {
	q := b.Query()
	q.Search = strings.TrimSpace(text)
	q.Page = 1
	return b.fetch(ctx, token, q)
}

// FilterStatus filters by payment status and returns to page 1.
func (b *PaymentsBoard) FilterStatus(ctx context.Context, token string, filter models.StatusFilter) (BoardView, error) {
	q := b.Query()
	q.Status = filter
	q.Page = 1
	return b.fetch(ctx, token, q)
}

// ToggleSort flips the order when field is already the sort field and
// otherwise sorts by field descending. Either way it returns to page 1.
func (b *PaymentsBoard) ToggleSort(ctx context.Context, token string, field models.SortField) (BoardView, error) {
	if field != models.SortByDate && field != models.SortByAmount {
		return BoardView{}, appErrors.Validation("unsupported sort field", map[string]string{"sortBy": "use date or amount"})
	}
	q := b.Query()
	if q.SortBy == field {
		q.SortOrder = q.SortOrder.Toggle()
	} else {
		q.SortBy = field
		q.SortOrder = models.SortDesc
	}
	q.Page = 1
	return b.fetch(ctx, token, q)
}

// GoToPage fetches page n. Pages outside [1, totalPages] are ignored.
func (b *PaymentsBoard) GoToPage(ctx context.Context, token string, n int) (BoardView, error) {
	b.mu.Lock()
	q := b.query
	pagination := b.pagination
	if pagination == nil || n < 1 || n > pagination.TotalPages {
		view := b.viewLocked()
		b.mu.Unlock()
		return view, nil
	}
	b.mu.Unlock()

	q.Page = n
	return b.fetch(ctx, token, q)
}

func (b *PaymentsBoard) fetch(ctx context.Context, token string, q models.PageQuery) (BoardView, error) {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.issued++
	gen := b.issued
	b.query = q
	fetchCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()
	defer cancel()

	page, err := b.repo.List(fetchCtx, token, q)

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen < b.issued || gen <= b.applied {
		b.metrics.RecordStaleResponse()
		b.logger.Debug("discarding stale payments page", zap.Uint64("generation", gen), zap.Uint64("latest", b.issued))
		view := b.viewLocked()
		view.Stale = true
		return view, nil
	}

	b.applied = gen
	b.cancel = nil
	if err != nil {
		b.items = []models.Enrollment{}
		b.pagination = nil
		b.loadErr = appErrors.FromError(err)
		b.logger.Warn("payments page failed", zap.Int("page", q.Page), zap.Error(err))
		return b.viewLocked(), err
	}
	b.items = page.Items
	b.pagination = page.Pagination
	b.loadErr = nil
	return b.viewLocked(), nil
}

// SetPaymentStatus moves the enrollment id, which must be on the current
// page, to target and re-fetches the page. Asking for the status it
// already has is a no-op and sends nothing.
func (b *PaymentsBoard) SetPaymentStatus(ctx context.Context, actor models.Principal, id string, target models.PaymentStatus) (BoardView, error) {
	b.mu.Lock()
	if b.mutating {
		b.mu.Unlock()
		return BoardView{}, appErrors.ErrMutationInFlight
	}
	idx := -1
	for i := range b.items {
		if b.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return BoardView{}, appErrors.Clone(appErrors.ErrNotFound, "enrollment is not on the current page")
	}
	current := b.items[idx]
	from := current.PaymentStatus.Effective()
	if !target.Targetable() {
		b.mu.Unlock()
		return BoardView{}, appErrors.Clone(appErrors.ErrTransitionNotAllowed, "payments can only be marked paid or failed")
	}
	if from == target {
		view := b.viewLocked()
		b.mu.Unlock()
		return view, nil
	}
	b.mutating = true
	q := b.query
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.mutating = false
		b.mu.Unlock()
	}()

	if err := b.repo.UpdatePaymentStatus(ctx, actor.Token, id, target); err != nil {
		b.logger.Warn("payment status update failed", zap.String("enrollment_id", id), zap.String("to", string(target)), zap.Error(err))
		return b.View(), err
	}

	b.mu.Lock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].PaymentStatus = target
		}
	}
	b.mu.Unlock()

	b.metrics.RecordStatusChange(target)
	b.logger.Info("payment status changed",
		zap.String("enrollment_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("reviewer_id", actor.UserID),
	)
	if b.recorder != nil {
		b.recorder.Record(ctx, PaymentChange{
			Enrollment: current,
			From:       from,
			To:         target,
			ReviewerID: actor.UserID,
			RequestID:  requestid.FromContext(ctx),
		})
	}

	view, err := b.fetch(ctx, actor.Token, q)
	if err != nil {
		// The change is confirmed; the view carries the failed refresh.
		b.logger.Warn("payments refresh after status change failed", zap.Error(err))
	}
	return view, nil
}

// Prepend shows a newly created enrollment at the top of page 1.
func (b *PaymentsBoard) Prepend(created models.Enrollment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append([]models.Enrollment{created}, b.items...)
	b.query.Page = 1
	switch {
	case b.pagination == nil:
	case b.pagination.Source == models.PaginationFromClient:
		b.pagination = models.ClientPagination(1, b.pagination.PageSize, b.pagination.TotalItems+1)
	default:
		b.pagination.Page = 1
		b.pagination.TotalItems++
	}
}

// Collect returns every enrollment matching the board's filters, walking
// pages in order, up to maxRows. It does not touch the board.
func (b *PaymentsBoard) Collect(ctx context.Context, token string, maxRows int) ([]models.Enrollment, error) {
	q := b.Query()
	q.Page = 1
	if b.maxLimit > 0 {
		q.Limit = b.maxLimit
	}

	var rows []models.Enrollment
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := b.repo.List(ctx, token, q)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page.Items...)
		if maxRows > 0 && len(rows) >= maxRows {
			return rows[:maxRows], nil
		}
		if len(page.Items) == 0 || page.Pagination == nil || !page.Pagination.HasNextPage {
			return rows, nil
		}
		q.Page++
	}
}

func (b *PaymentsBoard) viewLocked() BoardView {
	rows := make([]BoardRow, 0, len(b.items))
	for _, e := range b.items {
		rows = append(rows, BoardRow{Enrollment: e, Transitions: models.AvailableTransitions(e.PaymentStatus)})
	}
	var pagination *models.Pagination
	if b.pagination != nil {
		p := *b.pagination
		pagination = &p
	}
	return BoardView{
		Items:      rows,
		Pagination: pagination,
		Summary:    models.Summarize(b.items, pagination != nil && pagination.Source == models.PaginationFromServer),
		Query:      b.query,
		Generation: b.applied,
		Error:      b.loadErr,
		Busy:       b.mutating || b.issued != b.applied,
	}
}

