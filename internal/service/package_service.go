package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/internal/repository"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/pricing"
)

// PackagesPageSize is how many packages the admin list shows per page.
const PackagesPageSize = 10

type packageRepository interface {
	ListAdmin(ctx context.Context, token string) ([]models.Package, error)
	Create(ctx context.Context, token string, body dto.PackageBody) (*models.Package, error)
	Update(ctx context.Context, token, id string, body dto.PackageBody) (*models.Package, error)
	Delete(ctx context.Context, token, id string) error
}

type courseCatalog interface {
	Courses(ctx context.Context, token string) ([]models.Course, error)
	Invalidate(ctx context.Context)
}

var packageFieldMessages = map[string]string{
	"name":        "enter the package name",
	"description": "enter the package description",
	"imageUrl":    "enter the package image URL",
	"price":       "enter the package price",
	"courses":     "select at least two courses",
}

// PackageService manages packages for admins.
type PackageService struct {
	repo    packageRepository
	catalog courseCatalog
	schema  FormSchema[models.PackageForm]
	logger  *zap.Logger
}

// NewPackageService constructs PackageService.
func NewPackageService(repo packageRepository, catalog courseCatalog, logger *zap.Logger) *PackageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema := structSchema(newFormValidator(), packageFieldMessages, func(f models.PackageForm, fields map[string]string) {
		for name, text := range map[string]string{"name": f.Name, "description": f.Description, "imageUrl": f.ImageURL} {
			if strings.TrimSpace(text) == "" {
				fields[name] = packageFieldMessages[name]
			}
		}
		if _, bad := fields["price"]; bad {
			return
		}
		if f.Price.Empty() {
			fields["price"] = packageFieldMessages["price"]
			return
		}
		if v, ok := f.Price.Float(); !ok || v < 0 {
			fields["price"] = "price must be a non-negative number"
		}
	})
	return &PackageService{repo: repo, catalog: catalog, schema: schema, logger: logger}
}

// List returns one page of packages whose name or description contains
// query, ignoring case.
func (s *PackageService) List(ctx context.Context, token, query string, page int) ([]models.Package, *models.Pagination, error) {
	packages, err := s.repo.ListAdmin(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	filtered := FilterPackages(packages, query)
	q := models.PageQuery{Page: page, Limit: PackagesPageSize}
	items, pagination := repository.PaginateInMemory(filtered, q, repository.SortKeys[models.Package]{})
	return items, pagination, nil
}

// FilterPackages keeps packages whose name or description contains query.
func FilterPackages(packages []models.Package, query string) []models.Package {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Package, 0, len(packages))
	for _, p := range packages {
		if query == "" ||
			strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Description), query) {
			out = append(out, p)
		}
	}
	return out
}

// Quote previews the original price and discount for a selection.
func (s *PackageService) Quote(ctx context.Context, token string, courseIDs []string, price models.PriceText) (pricing.Quote, error) {
	courses, err := s.catalog.Courses(ctx, token)
	if err != nil {
		return pricing.Quote{}, err
	}
	return pricing.NewQuote(courseIDs, pricingItems(courses), string(price)), nil
}

// EditForm returns a form seeded from an existing package.
func (s *PackageService) EditForm(ctx context.Context, token, id string) (models.PackageForm, error) {
	packages, err := s.repo.ListAdmin(ctx, token)
	if err != nil {
		return models.PackageForm{}, err
	}
	for _, p := range packages {
		if p.ID == id {
			return models.PackageFormFrom(p), nil
		}
	}
	return models.PackageForm{}, appErrors.Clone(appErrors.ErrNotFound, "package not found")
}

// Create validates form, computes its pricing and stores it.
func (s *PackageService) Create(ctx context.Context, token string, form models.PackageForm) (*models.Package, error) {
	var created *models.Package
	session := NewFormSession(form, s.schema)
	err := session.Submit(ctx, func(ctx context.Context, f models.PackageForm) error {
		body, err := s.buildBody(ctx, token, f)
		if err != nil {
			return err
		}
		created, err = s.repo.Create(ctx, token, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)
	s.logger.Info("package created", zap.String("package_id", created.ID), zap.Int("discount", created.DiscountPercentage))
	return created, nil
}

// Update validates form and replaces package id.
func (s *PackageService) Update(ctx context.Context, token, id string, form models.PackageForm) (*models.Package, error) {
	var updated *models.Package
	session := NewFormSession(form, s.schema)
	err := session.Submit(ctx, func(ctx context.Context, f models.PackageForm) error {
		body, err := s.buildBody(ctx, token, f)
		if err != nil {
			return err
		}
		updated, err = s.repo.Update(ctx, token, id, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)
	return updated, nil
}

// Delete removes a package.
func (s *PackageService) Delete(ctx context.Context, token, id string) error {
	if err := s.repo.Delete(ctx, token, id); err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	return nil
}

func (s *PackageService) buildBody(ctx context.Context, token string, f models.PackageForm) (dto.PackageBody, error) {
	courses, err := s.catalog.Courses(ctx, token)
	if err != nil {
		return dto.PackageBody{}, err
	}
	known := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		known[c.ID] = struct{}{}
	}
	for _, id := range f.Courses {
		if _, ok := known[id]; !ok {
			return dto.PackageBody{}, appErrors.Clone(appErrors.ErrNotFound, "course "+id+" not found")
		}
	}

	quote := pricing.NewQuote(f.Courses, pricingItems(courses), string(f.Price))
	level := f.Level
	if level == "" {
		level = models.DefaultPackageLevel
	}
	return dto.PackageBody{
		Name:               strings.TrimSpace(f.Name),
		Description:        strings.TrimSpace(f.Description),
		ImageURL:           strings.TrimSpace(f.ImageURL),
		Price:              quote.Price,
		Courses:            f.Courses,
		Level:              level,
		OriginalPrice:      quote.OriginalPrice,
		DiscountPercentage: quote.DiscountPercentage,
	}, nil
}

func pricingItems(courses []models.Course) []pricing.Item {
	items := make([]pricing.Item, 0, len(courses))
	for _, c := range courses {
		items = append(items, pricing.Item{ID: c.ID, Price: c.Price})
	}
	return items
}
