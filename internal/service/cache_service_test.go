package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

type memoryCacheRepo struct {
	mu     sync.Mutex
	values map[string][]byte
	sets   map[string]map[string]struct{}
	err    error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: map[string][]byte{}, sets: map[string]map[string]struct{}{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.values {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.values, key)
		}
	}
	return nil
}

func (m *memoryCacheRepo) ReplaceSet(ctx context.Context, key string, members []string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := map[string]struct{}{}
	for _, member := range members {
		set[member] = struct{}{}
	}
	m.sets[key] = set
	return nil
}

func (m *memoryCacheRepo) AddToSet(ctx context.Context, key string, ttl time.Duration, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[key]
	if !ok {
		set = map[string]struct{}{}
		m.sets[key] = set
	}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return nil
}

func (m *memoryCacheRepo) IsMember(ctx context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	set, ok := m.sets[key]
	if !ok {
		return false, appErrors.ErrCacheMiss
	}
	_, found := set[member]
	return found, nil
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, time.Hour, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	hit, err := svc.Get(context.Background(), "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, repo.values)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	_, known := nilSvc.KnownEnrolled(context.Background(), "user:1", "c1")
	assert.False(t, known)
}

func TestCacheServiceRoundTripAndInvalidate(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, time.Hour, nil, true)
	ctx := context.Background()

	courses := []models.Course{{ID: "c1", Name: "Algebra", Price: 100}}
	require.NoError(t, svc.Set(ctx, cacheKeyCourses, courses, 0))
	require.NoError(t, svc.Set(ctx, "other:key", 1, 0))

	var cached []models.Course
	hit, err := svc.Get(ctx, cacheKeyCourses, &cached)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, courses, cached)

	require.NoError(t, svc.Invalidate(ctx, cachePatternCatalog))
	hit, err = svc.Get(ctx, cacheKeyCourses, &cached)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, repo.values, "other:key")
}

func TestCacheServiceEnrolledHints(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, 0, nil, true)
	ctx := context.Background()

	_, known := svc.KnownEnrolled(ctx, "user:1", "c1")
	assert.False(t, known)

	svc.RememberEnrolled(ctx, "user:1", []string{"c1", "p1"})
	enrolled, known := svc.KnownEnrolled(ctx, "user:1", "c1")
	assert.True(t, known)
	assert.True(t, enrolled)

	enrolled, known = svc.KnownEnrolled(ctx, "user:1", "c2")
	assert.True(t, known)
	assert.False(t, enrolled)

	svc.AddEnrolled(ctx, "user:1", "c2")
	enrolled, _ = svc.KnownEnrolled(ctx, "user:1", "c2")
	assert.True(t, enrolled)

	repo.err = errors.New("redis down")
	_, known = svc.KnownEnrolled(ctx, "user:1", "c1")
	assert.False(t, known)
}
