package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
)

// Backend routes for enrollments.
const (
	adminEnrollmentsPath     = "/active/admin/enrollments"
	adminCourseCreatePath    = "/active/admin/create"
	adminPackageCreatePath   = "/active-package/admin/create"
	paymentStatusPathPattern = "/active/payment/%s"
	studentActivePath        = "/active"
	studentPackagesPath      = "/active/packages/all"
)

// EnrollmentRepository reads and mutates enrollments through the backend.
type EnrollmentRepository struct {
	client *BackendClient
}

// NewEnrollmentRepository creates a new instance of EnrollmentRepository.
func NewEnrollmentRepository(client *BackendClient) *EnrollmentRepository {
	return &EnrollmentRepository{client: client}
}

// List fetches one page of enrollments, normalized. When the backend omits
// pagination metadata the page is sorted and sliced in memory.
func (r *EnrollmentRepository) List(ctx context.Context, token string, q models.PageQuery) (Page[models.Enrollment], error) {
	var envelope dto.EnrollmentsEnvelope
	if err := r.client.Get(ctx, token, adminEnrollmentsPath, PageQueryValues(q), &envelope); err != nil {
		return Page[models.Enrollment]{}, err
	}
	items := NormalizeEnrollments(envelope.Enrollments)
	return ResolvePage(items, envelope.Pagination, q, EnrollmentSortKeys), nil
}

// Create submits a new enrollment. The route and body depend on whether
// the draft is for a course or a package.
func (r *EnrollmentRepository) Create(ctx context.Context, token string, draft models.EnrollmentDraft) (*models.Enrollment, error) {
	var (
		path string
		body interface{}
	)
	switch item := draft.Item.(type) {
	case models.CourseItem:
		path = adminCourseCreatePath
		body = dto.CreateCourseEnrollmentBody{
			StudentID:     draft.StudentID,
			CourseID:      item.CourseID,
			Price:         draft.Price,
			PaymentStatus: draft.PaymentStatus,
		}
	case models.PackageItem:
		path = adminPackageCreatePath
		body = dto.CreatePackageEnrollmentBody{
			StudentID:     draft.StudentID,
			PackageID:     item.PackageID,
			Price:         draft.Price,
			PaymentStatus: draft.PaymentStatus,
			IsPackage:     true,
		}
	default:
		return nil, fmt.Errorf("create enrollment: unsupported item %T", draft.Item)
	}

	var envelope dto.CreatedEnrollmentEnvelope
	if err := r.client.Send(ctx, token, http.MethodPost, path, body, &envelope); err != nil {
		return nil, err
	}
	created := completeCreated(envelope.Enrollment, draft)
	enrollment := NormalizeEnrollment(created)
	return &enrollment, nil
}

// completeCreated fills the fields the create routes do not echo back so
// that the normalized result always agrees with the draft.
func completeCreated(raw dto.RawEnrollment, draft models.EnrollmentDraft) dto.RawEnrollment {
	isPackage := draft.Item.Kind() == models.ItemKindPackage
	raw.IsPackage = &isPackage
	if raw.ItemID == "" {
		raw.ItemID = draft.Item.ItemID()
	}
	if raw.Price == 0 {
		raw.Price = dto.Number(draft.Price)
	}
	if raw.PaymentStatus == "" {
		raw.PaymentStatus = string(draft.PaymentStatus)
	}
	return raw
}

// UpdatePaymentStatus sets the payment status of one enrollment.
func (r *EnrollmentRepository) UpdatePaymentStatus(ctx context.Context, token, id string, status models.PaymentStatus) error {
	path := fmt.Sprintf(paymentStatusPathPattern, url.PathEscape(id))
	return r.client.Send(ctx, token, http.MethodPut, path, dto.PaymentStatusBody{PaymentStatus: status}, nil)
}

// Claim records a student's claimed transfer for an item.
func (r *EnrollmentRepository) Claim(ctx context.Context, token string, body dto.ClaimBody) error {
	return r.client.Send(ctx, token, http.MethodPost, studentActivePath, body, nil)
}

// StudentCourses lists the caller's enrolled courses. Entries whose course
// was deleted are skipped.
func (r *EnrollmentRepository) StudentCourses(ctx context.Context, token string) ([]models.EnrolledCourse, error) {
	var envelope dto.ActiveEnvelope
	if err := r.client.Get(ctx, token, studentActivePath, nil, &envelope); err != nil {
		return nil, err
	}
	courses := make([]models.EnrolledCourse, 0, len(envelope.CoursesAreEnrolled))
	for _, entry := range envelope.CoursesAreEnrolled {
		if entry.CourseID == nil {
			continue
		}
		course := entry.CourseID.ToModel()
		courses = append(courses, models.EnrolledCourse{
			CourseID:    course.ID,
			Name:        course.Name,
			Description: course.Description,
			Level:       course.Level,
			Chapters:    course.Chapters,
			FromPackage: entry.FromPackage,
			PackageName: entry.PackageName,
		})
	}
	return courses, nil
}

// StudentPackages lists the caller's enrolled packages.
func (r *EnrollmentRepository) StudentPackages(ctx context.Context, token string) ([]models.EnrolledPackage, error) {
	var envelope dto.ActivePackagesEnvelope
	if err := r.client.Get(ctx, token, studentPackagesPath, nil, &envelope); err != nil {
		return nil, err
	}
	packages := make([]models.EnrolledPackage, 0, len(envelope.Packages))
	for _, entry := range envelope.Packages {
		ids := make([]string, 0, len(entry.Courses))
		for _, ref := range entry.Courses {
			if ref.ID != "" {
				ids = append(ids, ref.ID)
			}
		}
		packages = append(packages, models.EnrolledPackage{
			PackageID:   firstNonEmpty(entry.PackageID.ID, entry.MongoID),
			Name:        entry.PackageName,
			Description: entry.PackageDescription,
			Price:       entry.PackagePrice.Float64(),
			CourseIDs:   ids,
			EnrolledAt:  entry.EnrolledAt,
		})
	}
	return packages, nil
}
