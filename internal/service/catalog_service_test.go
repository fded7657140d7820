package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

type stubCourseReader struct {
	courses   []models.Course
	listCalls int
	err       error
}

func (s *stubCourseReader) List(ctx context.Context, token string) ([]models.Course, error) {
	s.listCalls++
	return s.courses, s.err
}

func (s *stubCourseReader) FindByID(ctx context.Context, token, id string) (*models.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.courses {
		if s.courses[i].ID == id {
			c := s.courses[i]
			return &c, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
}

type stubPackageReader struct {
	packages []models.Package
	findErr  error
}

func (s *stubPackageReader) List(ctx context.Context, token string) ([]models.Package, error) {
	return s.packages, nil
}

func (s *stubPackageReader) FindByID(ctx context.Context, token, id string) (*models.Package, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.packages {
		if s.packages[i].ID == id {
			p := s.packages[i]
			return &p, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "package not found")
}

func newCatalogFixture(cached bool) (*CatalogService, *stubCourseReader, *stubPackageReader) {
	courses := &stubCourseReader{courses: []models.Course{
		{ID: "c1", Name: "Go Fundamentals", Price: 150000},
		{ID: "c2", Name: "Advanced SQL", Price: 200000},
	}}
	packages := &stubPackageReader{packages: []models.Package{
		{ID: "p1", Name: "Backend Bundle", Price: 300000},
	}}
	cache := NewCacheService(newMemoryCacheRepo(), nil, 0, 0, nil, cached)
	return NewCatalogService(courses, packages, cache, nil), courses, packages
}

func TestCatalogCoursesServedFromCache(t *testing.T) {
	svc, courses, _ := newCatalogFixture(true)
	ctx := context.Background()

	first, err := svc.Courses(ctx, "tok")
	require.NoError(t, err)
	second, err := svc.Courses(ctx, "tok")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, courses.listCalls)

	svc.Invalidate(ctx)
	_, err = svc.Courses(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, courses.listCalls)
}

func TestCatalogCoursesWithoutCache(t *testing.T) {
	svc, courses, _ := newCatalogFixture(false)

	_, err := svc.Courses(context.Background(), "tok")
	require.NoError(t, err)
	_, err = svc.Courses(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, courses.listCalls)
}

func TestCatalogSearchCoursesIgnoresCase(t *testing.T) {
	svc, _, _ := newCatalogFixture(false)

	found, err := svc.SearchCourses(context.Background(), "tok", "  sql ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "c2", found[0].ID)

	all, err := svc.SearchCourses(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCatalogResolvePrefersPackages(t *testing.T) {
	svc, _, _ := newCatalogFixture(false)

	item, err := svc.Resolve(context.Background(), "tok", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.ItemKindPackage, item.Kind)
	assert.Equal(t, "p1", item.ID())

	item, err = svc.Resolve(context.Background(), "tok", "c1")
	require.NoError(t, err)
	assert.Equal(t, models.ItemKindCourse, item.Kind)
	assert.Equal(t, "Go Fundamentals", item.Course.Name)
}

func TestCatalogResolveUnknownID(t *testing.T) {
	svc, _, _ := newCatalogFixture(false)

	_, err := svc.Resolve(context.Background(), "tok", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Resolve(context.Background(), "tok", "   ")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCatalogResolveStopsOnPackageFailure(t *testing.T) {
	svc, _, packages := newCatalogFixture(false)
	packages.findErr = errors.New("connection reset")

	_, err := svc.Resolve(context.Background(), "tok", "c1")
	require.Error(t, err)
	assert.NotEqual(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFilterStudentsMatchesPhoneAndEmail(t *testing.T) {
	students := []models.Student{
		{ID: "s1", Name: "Rina", Email: "rina@example.com", PhoneNumber: "0812000111"},
		{ID: "s2", Name: "Budi", Email: "BUDI@example.com", PhoneNumber: "0813999222"},
	}

	assert.Len(t, FilterStudents(students, "budi@"), 1)
	assert.Len(t, FilterStudents(students, "0812"), 1)
	assert.Len(t, FilterStudents(students, ""), 2)
}
