package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

const (
	packagesPath      = "/packages"
	adminPackagesPath = "/packages/admin/all"
)

// PackageRepository manages packages through the backend.
type PackageRepository struct {
	client *BackendClient
}

// NewPackageRepository creates a new instance of PackageRepository.
func NewPackageRepository(client *BackendClient) *PackageRepository {
	return &PackageRepository{client: client}
}

// List returns the packages visible to students.
func (r *PackageRepository) List(ctx context.Context, token string) ([]models.Package, error) {
	return r.list(ctx, token, packagesPath)
}

// ListAdmin returns every package, including unpublished ones.
func (r *PackageRepository) ListAdmin(ctx context.Context, token string) ([]models.Package, error) {
	return r.list(ctx, token, adminPackagesPath)
}

func (r *PackageRepository) list(ctx context.Context, token, path string) ([]models.Package, error) {
	var envelope dto.PackagesEnvelope
	if err := r.client.Get(ctx, token, path, nil, &envelope); err != nil {
		return nil, err
	}
	packages := make([]models.Package, 0, len(envelope.Packages))
	for _, raw := range envelope.Packages {
		packages = append(packages, raw.ToModel())
	}
	return packages, nil
}

// FindByID returns one package.
func (r *PackageRepository) FindByID(ctx context.Context, token, id string) (*models.Package, error) {
	var envelope dto.PackageEnvelope
	if err := r.client.Get(ctx, token, packagePath(id), nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Package == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "package not found")
	}
	pkg := envelope.Package.ToModel()
	return &pkg, nil
}

// Create stores a new package.
func (r *PackageRepository) Create(ctx context.Context, token string, body dto.PackageBody) (*models.Package, error) {
	var envelope dto.PackageEnvelope
	if err := r.client.Send(ctx, token, http.MethodPost, packagesPath, body, &envelope); err != nil {
		return nil, err
	}
	return packageFromEnvelope(envelope, "", body), nil
}

// Update replaces a package.
func (r *PackageRepository) Update(ctx context.Context, token, id string, body dto.PackageBody) (*models.Package, error) {
	var envelope dto.PackageEnvelope
	if err := r.client.Send(ctx, token, http.MethodPut, packagePath(id), body, &envelope); err != nil {
		return nil, err
	}
	return packageFromEnvelope(envelope, id, body), nil
}

// Delete removes a package.
func (r *PackageRepository) Delete(ctx context.Context, token, id string) error {
	return r.client.Send(ctx, token, http.MethodDelete, packagePath(id), nil, nil)
}

func packagePath(id string) string {
	return packagesPath + "/" + url.PathEscape(id)
}

// packageFromEnvelope prefers the stored document and falls back to what
// was sent when the backend only acknowledges the write.
func packageFromEnvelope(envelope dto.PackageEnvelope, id string, body dto.PackageBody) *models.Package {
	if envelope.Package != nil {
		pkg := envelope.Package.ToModel()
		if pkg.ID == "" {
			pkg.ID = id
		}
		return &pkg
	}
	courses := make([]models.PackageCourse, 0, len(body.Courses))
	for _, courseID := range body.Courses {
		courses = append(courses, models.PackageCourse{ID: courseID})
	}
	return &models.Package{
		ID:                 id,
		Name:               body.Name,
		Description:        body.Description,
		ImageURL:           body.ImageURL,
		Price:              body.Price,
		OriginalPrice:      body.OriginalPrice,
		DiscountPercentage: body.DiscountPercentage,
		Level:              body.Level,
		Courses:            courses,
	}
}
