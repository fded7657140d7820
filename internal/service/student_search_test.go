package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/debounce"
)

type fakeStudentSearcher struct {
	mu      sync.Mutex
	queries []string
	tokens  []string
	gate    chan struct{}
	err     error
}

func (f *fakeStudentSearcher) Search(ctx context.Context, token, query string, limit int) ([]models.Student, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.tokens = append(f.tokens, token)
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return []models.Student{{ID: "s-" + query, Name: query}}, nil
}

func (f *fakeStudentSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func newSearchFixture() (*StudentSearch, *fakeStudentSearcher, *debounce.ManualClock) {
	repo := &fakeStudentSearcher{}
	clock := debounce.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	search := NewStudentSearch(repo, StudentSearchConfig{Quiet: 500 * time.Millisecond, MinChars: 2, Limit: 20, Clock: clock}, nil, nil)
	return search, repo, clock
}

func TestStudentSearchWaitsForQuietPeriod(t *testing.T) {
	search, repo, clock := newSearchFixture()

	short := <-search.Input("tok", "a")
	assert.NoError(t, short.Err)
	assert.Empty(t, short.Students)

	clock.Advance(100 * time.Millisecond)
	ch := search.Input("tok", "ab")

	clock.Advance(499 * time.Millisecond)
	assert.Empty(t, repo.calls())

	clock.Advance(time.Millisecond)
	res := <-ch
	require.NoError(t, res.Err)
	require.Len(t, res.Students, 1)
	assert.Equal(t, "s-ab", res.Students[0].ID)
	assert.Equal(t, []string{"ab"}, repo.calls())
	assert.Equal(t, []string{"tok"}, repo.tokens)
}

func TestStudentSearchBelowThresholdNeverRequests(t *testing.T) {
	search, repo, clock := newSearchFixture()

	res := <-search.Input("tok", " x ")
	assert.Empty(t, res.Students)
	clock.Advance(2 * time.Second)
	assert.Empty(t, repo.calls())
	assert.Zero(t, clock.Pending())
}

func TestStudentSearchSupersedesPendingInput(t *testing.T) {
	search, repo, clock := newSearchFixture()

	first := search.Input("tok", "ab")
	clock.Advance(200 * time.Millisecond)
	second := search.Input("tok", "abc")

	res := <-first
	assert.True(t, errors.Is(res.Err, appErrors.ErrSuperseded))
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(500 * time.Millisecond)
	res = <-second
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"abc"}, repo.calls())
}

func TestStudentSearchClearingSupersedesPending(t *testing.T) {
	search, repo, clock := newSearchFixture()

	pending := search.Input("tok", "ab")
	res := <-search.Input("tok", "a")
	assert.Empty(t, res.Students)

	res = <-pending
	assert.True(t, errors.Is(res.Err, appErrors.ErrSuperseded))
	clock.Advance(time.Second)
	assert.Empty(t, repo.calls())
}

func TestStudentSearchStartedLookupKeepsItsResult(t *testing.T) {
	search, repo, clock := newSearchFixture()
	repo.gate = make(chan struct{})

	first := search.Input("tok", "ab")
	advanced := make(chan struct{})
	go func() {
		clock.Advance(500 * time.Millisecond)
		close(advanced)
	}()
	require.Eventually(t, func() bool { return len(repo.calls()) == 1 }, time.Second, time.Millisecond)

	second := search.Input("tok", "abc")
	close(repo.gate)
	<-advanced

	res := <-first
	require.NoError(t, res.Err)
	assert.Equal(t, "s-ab", res.Students[0].ID)

	clock.Advance(500 * time.Millisecond)
	res = <-second
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"ab", "abc"}, repo.calls())
}

func TestStudentSearchQueryCancelledStopsTimer(t *testing.T) {
	search, repo, clock := newSearchFixture()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := search.Query(ctx, "tok", "ahmed")
		done <- err
	}()
	require.Eventually(t, func() bool { return clock.Pending() == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Zero(t, clock.Pending())
	clock.Advance(time.Second)
	assert.Empty(t, repo.calls())
}

func TestStudentSearchPropagatesBackendError(t *testing.T) {
	search, repo, clock := newSearchFixture()
	repo.err = &appErrors.FetchError{Method: "GET", URL: "/user/students", HTTPStatus: 500, Message: "db down"}

	ch := search.Input("tok", "sara")
	clock.Advance(500 * time.Millisecond)
	res := <-ch
	require.Error(t, res.Err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(res.Err).Code)

	search.Close()
}
