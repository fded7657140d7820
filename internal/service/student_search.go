package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/debounce"
)

type studentSearcher interface {
	Search(ctx context.Context, token, query string, limit int) ([]models.Student, error)
}

// SearchResult is the outcome of one student search input.
type SearchResult struct {
	Students []models.Student
	Err      error
}

type searchWaiter struct {
	query string
	ch    chan SearchResult
}

// StudentSearchConfig tunes a StudentSearch.
type StudentSearchConfig struct {
	Quiet    time.Duration
	MinChars int
	Limit    int
	Clock    debounce.Clock
}

// StudentSearch is one admin's student picker. Input shorter than MinChars
// clears the results without a request; longer input is looked up once it
// has been quiet for the debounce period. Waiters whose input was replaced
// before the lookup started get ErrSuperseded.
type StudentSearch struct {
	repo    studentSearcher
	limit   int
	metrics *MetricsService
	logger  *zap.Logger
	search  *debounce.Search

	ctx    context.Context
	cancel context.CancelFunc

	inputMu sync.Mutex
	mu      sync.Mutex
	token   string
	waiters []searchWaiter
}

// NewStudentSearch wires a StudentSearch.
func NewStudentSearch(repo studentSearcher, cfg StudentSearchConfig, metrics *MetricsService, logger *zap.Logger) *StudentSearch {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Quiet <= 0 {
		cfg.Quiet = 500 * time.Millisecond
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 50
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &StudentSearch{
		repo:    repo,
		limit:   cfg.Limit,
		metrics: metrics,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.search = debounce.NewSearch(cfg.Quiet, cfg.MinChars, cfg.Clock, s.run, s.clear)
	return s
}

// Input feeds the latest text and returns a channel that receives exactly
// one result for it.
func (s *StudentSearch) Input(token, text string) <-chan SearchResult {
	ch := make(chan SearchResult, 1)

	s.inputMu.Lock()
	defer s.inputMu.Unlock()

	if !debounce.MeetsThreshold(text, s.search.MinChars()) {
		s.search.Input(text)
		ch <- SearchResult{Students: []models.Student{}}
		return ch
	}

	s.mu.Lock()
	s.supersedeLocked()
	s.token = token
	s.waiters = append(s.waiters, searchWaiter{query: debounce.Normalize(text), ch: ch})
	s.mu.Unlock()

	s.search.Input(text)
	return ch
}

// Query is Input followed by a wait. If ctx ends first the pending lookup
// is cancelled unless another caller still waits on it.
func (s *StudentSearch) Query(ctx context.Context, token, text string) ([]models.Student, error) {
	ch := s.Input(token, text)
	select {
	case res := <-ch:
		return res.Students, res.Err
	case <-ctx.Done():
		s.abandon(ch)
		return nil, ctx.Err()
	}
}

// Close cancels any pending lookup and releases its waiters.
func (s *StudentSearch) Close() {
	s.search.Stop()
	s.cancel()
	s.mu.Lock()
	s.supersedeLocked()
	s.mu.Unlock()
}

func (s *StudentSearch) abandon(ch <-chan SearchResult) {
	s.inputMu.Lock()
	defer s.inputMu.Unlock()
	s.mu.Lock()
	kept := s.waiters[:0]
	for _, w := range s.waiters {
		if w.ch != ch {
			kept = append(kept, w)
		}
	}
	s.waiters = kept
	empty := len(kept) == 0
	s.mu.Unlock()
	if empty {
		s.search.Stop()
	}
}

func (s *StudentSearch) run(query string) {
	s.mu.Lock()
	token := s.token
	var ready []searchWaiter
	rest := s.waiters[:0]
	for _, w := range s.waiters {
		if w.query == query {
			ready = append(ready, w)
		} else {
			rest = append(rest, w)
		}
	}
	s.waiters = rest
	s.mu.Unlock()

	if len(ready) == 0 {
		return
	}

	students, err := s.repo.Search(s.ctx, token, query, s.limit)
	if err != nil {
		s.logger.Warn("student search failed", zap.String("query", query), zap.Error(err))
	}
	if students == nil && err == nil {
		students = []models.Student{}
	}
	for _, w := range ready {
		w.ch <- SearchResult{Students: students, Err: err}
	}
}

func (s *StudentSearch) clear() {
	s.mu.Lock()
	s.supersedeLocked()
	s.mu.Unlock()
}

func (s *StudentSearch) supersedeLocked() {
	for _, w := range s.waiters {
		w.ch <- SearchResult{Err: appErrors.ErrSuperseded}
		s.metrics.RecordSearchSuperseded()
	}
	s.waiters = nil
}
