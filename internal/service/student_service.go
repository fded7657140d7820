package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

// Defaults shown for enrolled items the backend returned without a name.
const (
	defaultCourseName  = "course"
	defaultPackageName = "package"
	minPhoneLength     = 10
)

type studentEnrollmentRepository interface {
	Claim(ctx context.Context, token string, body dto.ClaimBody) error
	StudentCourses(ctx context.Context, token string) ([]models.EnrolledCourse, error)
	StudentPackages(ctx context.Context, token string) ([]models.EnrolledPackage, error)
}

type catalogResolver interface {
	Resolve(ctx context.Context, token, id string) (*models.CatalogItem, error)
}

// CheckoutView is what a student sees before claiming an item.
type CheckoutView struct {
	Item            *models.CatalogItem `json:"item"`
	AlreadyEnrolled bool                `json:"alreadyEnrolled"`
}

// ClaimReceipt confirms a claimed transfer awaiting admin review.
type ClaimReceipt struct {
	ItemID        string               `json:"itemId"`
	ItemName      string               `json:"itemName"`
	Kind          models.ItemKind      `json:"kind"`
	Price         float64              `json:"price"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// StudentService serves the student self-service screens.
type StudentService struct {
	repo      studentEnrollmentRepository
	catalog   catalogResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service. cache may be nil.
func NewStudentService(repo studentEnrollmentRepository, catalog catalogResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, catalog: catalog, cache: cache, validator: validate, logger: logger}
}

// Checkout resolves id and tells whether the caller already owns it.
func (s *StudentService) Checkout(ctx context.Context, p models.Principal, id string) (*CheckoutView, error) {
	item, err := s.catalog.Resolve(ctx, p.Token, id)
	if err != nil {
		return nil, err
	}
	enrolled, known := s.cache.KnownEnrolled(ctx, p.SessionKey(), item.ID())
	if !known {
		dashboard, err := s.Dashboard(ctx, p)
		if err != nil {
			s.logger.Warn("enrollment lookup for checkout failed", zap.String("item_id", item.ID()), zap.Error(err))
		} else {
			enrolled = containsString(dashboard.ItemIDs(), item.ID())
		}
	}
	return &CheckoutView{Item: item, AlreadyEnrolled: enrolled}, nil
}

// Claim reports a transfer for item id. The price always comes from the
// catalog.
func (s *StudentService) Claim(ctx context.Context, p models.Principal, id string, req dto.ClaimRequest) (*ClaimReceipt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid claim payload")
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if utf8.RuneCountInString(phone) < minPhoneLength {
		return nil, appErrors.Validation("invalid claim payload", map[string]string{
			"phoneNumber": "enter the phone number the transfer was sent from",
		})
	}

	item, err := s.catalog.Resolve(ctx, p.Token, id)
	if err != nil {
		return nil, err
	}
	if enrolled, known := s.cache.KnownEnrolled(ctx, p.SessionKey(), item.ID()); known && enrolled {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "you are already enrolled in "+item.Name())
	}

	body := dto.ClaimBody{PhoneNumber: phone, CourseID: item.ID(), Price: item.Price()}
	if err := s.repo.Claim(ctx, p.Token, body); err != nil {
		return nil, err
	}
	s.logger.Info("transfer claimed", zap.String("item_id", item.ID()), zap.String("kind", string(item.Kind)), zap.String("student", p.SessionKey()))
	return &ClaimReceipt{
		ItemID:        item.ID(),
		ItemName:      item.Name(),
		Kind:          item.Kind,
		Price:         item.Price(),
		PaymentStatus: models.PaymentStatusPending,
	}, nil
}

// Dashboard merges the caller's courses and packages. When the packages
// lookup fails the courses are still returned.
func (s *StudentService) Dashboard(ctx context.Context, p models.Principal) (models.StudentEnrollments, error) {
	courses, err := s.repo.StudentCourses(ctx, p.Token)
	if err != nil {
		return models.StudentEnrollments{}, err
	}
	for i := range courses {
		if strings.TrimSpace(courses[i].Name) == "" {
			courses[i].Name = defaultCourseName
		}
	}

	view := models.StudentEnrollments{Courses: courses, Packages: []models.EnrolledPackage{}}
	packages, err := s.repo.StudentPackages(ctx, p.Token)
	if err != nil {
		s.logger.Warn("student packages unavailable", zap.Error(err))
		view.PackagesUnavailable = true
	} else {
		for i := range packages {
			if strings.TrimSpace(packages[i].Name) == "" {
				packages[i].Name = defaultPackageName
			}
			if packages[i].CourseIDs == nil {
				packages[i].CourseIDs = []string{}
			}
		}
		view.Packages = packages
		s.cache.RememberEnrolled(ctx, p.SessionKey(), view.ItemIDs())
	}
	return view, nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
