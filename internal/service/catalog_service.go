package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

type courseReader interface {
	List(ctx context.Context, token string) ([]models.Course, error)
	FindByID(ctx context.Context, token, id string) (*models.Course, error)
}

type packageReader interface {
	List(ctx context.Context, token string) ([]models.Package, error)
	FindByID(ctx context.Context, token, id string) (*models.Package, error)
}

// CatalogService reads courses and packages, caching what students and
// admins browse most.
type CatalogService struct {
	courses  courseReader
	packages packageReader
	cache    *CacheService
	logger   *zap.Logger
}

// NewCatalogService constructs CatalogService. cache may be nil.
func NewCatalogService(courses courseReader, packages packageReader, cache *CacheService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{courses: courses, packages: packages, cache: cache, logger: logger}
}

// Courses returns every course.
func (s *CatalogService) Courses(ctx context.Context, token string) ([]models.Course, error) {
	var cached []models.Course
	if hit, _ := s.cache.Get(ctx, cacheKeyCourses, &cached); hit {
		return cached, nil
	}
	courses, err := s.courses.List(ctx, token)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, cacheKeyCourses, courses, 0)
	return courses, nil
}

// Packages returns the packages offered to students.
func (s *CatalogService) Packages(ctx context.Context, token string) ([]models.Package, error) {
	var cached []models.Package
	if hit, _ := s.cache.Get(ctx, cacheKeyPackages, &cached); hit {
		return cached, nil
	}
	packages, err := s.packages.List(ctx, token)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, cacheKeyPackages, packages, 0)
	return packages, nil
}

// SearchCourses returns the courses whose name contains query.
func (s *CatalogService) SearchCourses(ctx context.Context, token, query string) ([]models.Course, error) {
	courses, err := s.Courses(ctx, token)
	if err != nil {
		return nil, err
	}
	return FilterCourses(courses, query), nil
}

// SearchPackages returns the offered packages whose name contains query.
func (s *CatalogService) SearchPackages(ctx context.Context, token, query string) ([]models.Package, error) {
	packages, err := s.Packages(ctx, token)
	if err != nil {
		return nil, err
	}
	return FilterPackagesByName(packages, query), nil
}

// Resolve looks id up as a package first and as a course second.
func (s *CatalogService) Resolve(ctx context.Context, token, id string) (*models.CatalogItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "item not found")
	}

	var cached models.CatalogItem
	if hit, _ := s.cache.Get(ctx, cacheKeyCatalogItem+id, &cached); hit {
		return &cached, nil
	}

	pkg, err := s.packages.FindByID(ctx, token, id)
	if err == nil {
		item := &models.CatalogItem{Kind: models.ItemKindPackage, Package: pkg}
		_ = s.cache.Set(ctx, cacheKeyCatalogItem+id, item, 0)
		return item, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	course, err := s.courses.FindByID(ctx, token, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "item not found")
		}
		return nil, err
	}
	item := &models.CatalogItem{Kind: models.ItemKindCourse, Course: course}
	_ = s.cache.Set(ctx, cacheKeyCatalogItem+id, item, 0)
	return item, nil
}

// Invalidate drops every cached catalog entry.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cachePatternCatalog); err != nil {
		s.logger.Warn("catalog cache not invalidated", zap.Error(err))
	}
}

// FilterCourses keeps courses whose name contains query, ignoring case.
func FilterCourses(courses []models.Course, query string) []models.Course {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if query == "" || strings.Contains(strings.ToLower(c.Name), query) {
			out = append(out, c)
		}
	}
	return out
}

// FilterPackagesByName keeps packages whose name contains query, ignoring case.
func FilterPackagesByName(packages []models.Package, query string) []models.Package {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Package, 0, len(packages))
	for _, p := range packages {
		if query == "" || strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out
}

// FilterStudents keeps students matching query on name, email or phone.
func FilterStudents(students []models.Student, query string) []models.Student {
	query = strings.TrimSpace(query)
	out := make([]models.Student, 0, len(students))
	for _, st := range students {
		if st.MatchesText(query) {
			out = append(out, st)
		}
	}
	return out
}

func isNotFound(err error) bool {
	return appErrors.FromError(err).Code == appErrors.ErrNotFound.Code
}
