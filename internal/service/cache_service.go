package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	ReplaceSet(ctx context.Context, key string, members []string, ttl time.Duration) error
	AddToSet(ctx context.Context, key string, ttl time.Duration, members ...string) error
	IsMember(ctx context.Context, key, member string) (bool, error)
}

// Cache key layout.
const (
	cacheKeyCourses      = "catalog:courses"
	cacheKeyPackages     = "catalog:packages"
	cacheKeyCatalogItem  = "catalog:item:"
	cachePatternCatalog  = "catalog:*"
	cacheKeyEnrolledHint = "enrolled:"
)

// CacheService wraps the cache repository with metrics and an on/off
// switch. Callers treat every cache error as a miss.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	hintTTL    time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL, hintTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if hintTTL <= 0 {
		hintTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, hintTTL: hintTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// RememberEnrolled replaces the student's "already enrolled" hint set.
func (s *CacheService) RememberEnrolled(ctx context.Context, studentKey string, itemIDs []string) {
	if !s.Enabled() || studentKey == "" {
		return
	}
	if err := s.repo.ReplaceSet(ctx, cacheKeyEnrolledHint+studentKey, itemIDs, s.hintTTL); err != nil {
		s.logger.Warn("enrolled hint write failed", zap.String("student", studentKey), zap.Error(err))
	}
}

// AddEnrolled adds items to the student's hint set.
func (s *CacheService) AddEnrolled(ctx context.Context, studentKey string, itemIDs ...string) {
	if !s.Enabled() || studentKey == "" {
		return
	}
	if err := s.repo.AddToSet(ctx, cacheKeyEnrolledHint+studentKey, s.hintTTL, itemIDs...); err != nil {
		s.logger.Warn("enrolled hint add failed", zap.String("student", studentKey), zap.Error(err))
	}
}

// KnownEnrolled reports whether the hint set says the student already owns
// itemID. Unknown means no usable hint: callers must fall through to the
// backend.
func (s *CacheService) KnownEnrolled(ctx context.Context, studentKey, itemID string) (enrolled, known bool) {
	if !s.Enabled() || studentKey == "" {
		return false, false
	}
	start := time.Now()
	found, err := s.repo.IsMember(ctx, cacheKeyEnrolledHint+studentKey, itemID)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("enrolled hint read failed", zap.String("student", studentKey), zap.Error(err))
		}
		return false, false
	}
	return found, true
}
