package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/models"
)

// ConsoleSession is the server-side state of one admin's console: the
// payments board, the enrollment dialog and the student picker.
type ConsoleSession struct {
	Board          *PaymentsBoard
	EnrollmentForm *EnrollmentForm
	Students       *StudentSearch

	lastSeen time.Time
}

func (s *ConsoleSession) close() {
	if s.Students != nil {
		s.Students.Close()
	}
}

type consoleEnrollments interface {
	paymentsRepository
	enrollmentCreator
}

// ConsoleDeps are shared by every console session.
type ConsoleDeps struct {
	Enrollments consoleEnrollments
	Catalog     itemCatalog
	Students    studentSearcher
	Recorder    paymentChangeRecorder
	Metrics     *MetricsService
	PageSize    int
	MaxPageSize int
	Search      StudentSearchConfig
	Logger      *zap.Logger
}

// NewConsoleFactory returns a constructor for fresh sessions.
func NewConsoleFactory(deps ConsoleDeps) func() *ConsoleSession {
	return func() *ConsoleSession {
		board := NewPaymentsBoard(deps.Enrollments, deps.Recorder, deps.Metrics, deps.PageSize, deps.MaxPageSize, deps.Logger)
		return &ConsoleSession{
			Board:          board,
			EnrollmentForm: NewEnrollmentForm(deps.Enrollments, deps.Catalog, board, deps.Logger),
			Students:       NewStudentSearch(deps.Students, deps.Search, deps.Metrics, deps.Logger),
		}
	}
}

// ConsoleSessions keeps one ConsoleSession per caller and drops sessions
// that have been idle too long.
type ConsoleSessions struct {
	mu       sync.Mutex
	sessions map[string]*ConsoleSession
	factory  func() *ConsoleSession
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewConsoleSessions constructs the registry.
func NewConsoleSessions(factory func() *ConsoleSession, metrics *MetricsService, logger *zap.Logger) *ConsoleSessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleSessions{
		sessions: make(map[string]*ConsoleSession),
		factory:  factory,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the caller's session, opening one on first use.
func (r *ConsoleSessions) Get(p models.Principal) *ConsoleSession {
	key := p.SessionKey()
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[key]
	if !ok {
		session = r.factory()
		r.sessions[key] = session
		r.metrics.SetConsoleSessions(len(r.sessions))
		r.logger.Debug("console session opened", zap.String("session", key))
	}
	session.lastSeen = r.now()
	return session
}

// End closes the caller's session if it exists.
func (r *ConsoleSessions) End(p models.Principal) {
	r.mu.Lock()
	session, ok := r.sessions[p.SessionKey()]
	delete(r.sessions, p.SessionKey())
	r.metrics.SetConsoleSessions(len(r.sessions))
	r.mu.Unlock()
	if ok {
		session.close()
	}
}

// Len returns the number of open sessions.
func (r *ConsoleSessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than maxIdle and returns how many
// were closed.
func (r *ConsoleSessions) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	var expired []*ConsoleSession

	r.mu.Lock()
	for key, session := range r.sessions {
		if session.lastSeen.Before(cutoff) {
			expired = append(expired, session)
			delete(r.sessions, key)
		}
	}
	r.metrics.SetConsoleSessions(len(r.sessions))
	r.mu.Unlock()

	for _, session := range expired {
		session.close()
	}
	if len(expired) > 0 {
		r.logger.Info("console sessions expired", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *ConsoleSessions) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(maxIdle)
		}
	}
}
