package repository

import (
	"context"
	"net/url"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

const (
	allCoursesPath    = "/course/allCourses"
	coursePathPattern = "/course/"
)

// CourseRepository reads courses from the backend.
type CourseRepository struct {
	client *BackendClient
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(client *BackendClient) *CourseRepository {
	return &CourseRepository{client: client}
}

// List returns every course.
func (r *CourseRepository) List(ctx context.Context, token string) ([]models.Course, error) {
	var envelope dto.CoursesEnvelope
	if err := r.client.Get(ctx, token, allCoursesPath, nil, &envelope); err != nil {
		return nil, err
	}
	courses := make([]models.Course, 0, len(envelope.Courses))
	for _, raw := range envelope.Courses {
		courses = append(courses, raw.ToModel())
	}
	return courses, nil
}

// FindByID returns one course. The backend answers with the bare document.
func (r *CourseRepository) FindByID(ctx context.Context, token, id string) (*models.Course, error) {
	var raw dto.RawCourse
	if err := r.client.Get(ctx, token, coursePathPattern+url.PathEscape(id), nil, &raw); err != nil {
		return nil, err
	}
	course := raw.ToModel()
	if course.ID == "" && course.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	if course.ID == "" {
		course.ID = id
	}
	return &course, nil
}
