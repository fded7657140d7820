package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

type enrollmentCreator interface {
	Create(ctx context.Context, token string, draft models.EnrollmentDraft) (*models.Enrollment, error)
}

type itemCatalog interface {
	Courses(ctx context.Context, token string) ([]models.Course, error)
	Packages(ctx context.Context, token string) ([]models.Package, error)
}

type enrollmentPrepender interface {
	Prepend(created models.Enrollment)
}

var enrollmentFieldMessages = map[string]string{
	"mode":          "choose course or package",
	"studentId":     "select a student",
	"courseId":      "select a course",
	"packageId":     "select a package",
	"price":         "enter the price",
	"paymentStatus": "choose pending, paid or failed",
}

var enrollmentSchema = structSchema(newFormValidator(), enrollmentFieldMessages, func(f models.EnrollmentForm, fields map[string]string) {
	if _, bad := fields["price"]; bad {
		return
	}
	if f.Price.Empty() {
		fields["price"] = enrollmentFieldMessages["price"]
		return
	}
	if v, ok := f.Price.Float(); !ok || v < 0 {
		fields["price"] = "price must be a non-negative number"
	}
})

// EnrollmentFormView is what the admin sees of the form.
type EnrollmentFormView struct {
	Form       models.EnrollmentForm `json:"form"`
	Submitting bool                  `json:"submitting"`
}

// EnrollmentForm is one admin's "add enrollment" dialog. Picking a course
// or package seeds the price only while the price is empty, and switching
// mode clears the selection of the other mode.
type EnrollmentForm struct {
	session *FormSession[models.EnrollmentForm]
	creator enrollmentCreator
	catalog itemCatalog
	board   enrollmentPrepender
	logger  *zap.Logger
}

// NewEnrollmentForm opens an empty form. board may be nil.
func NewEnrollmentForm(creator enrollmentCreator, catalog itemCatalog, board enrollmentPrepender, logger *zap.Logger) *EnrollmentForm {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentForm{
		session: NewFormSession(models.NewEnrollmentForm(), FormSchema[models.EnrollmentForm](enrollmentSchema)),
		creator: creator,
		catalog: catalog,
		board:   board,
		logger:  logger,
	}
}

// View returns the current form.
func (f *EnrollmentForm) View() EnrollmentFormView {
	return EnrollmentFormView{Form: f.session.Value(), Submitting: f.session.Submitting()}
}

// SetMode switches between course and package mode.
func (f *EnrollmentForm) SetMode(mode models.ItemKind) error {
	if mode != models.ItemKindCourse && mode != models.ItemKindPackage {
		return appErrors.Validation("unsupported mode", map[string]string{"mode": enrollmentFieldMessages["mode"]})
	}
	f.session.Update(func(v *models.EnrollmentForm) {
		if v.Mode == mode {
			return
		}
		v.Mode = mode
		if mode == models.ItemKindCourse {
			v.PackageID = ""
		} else {
			v.CourseID = ""
		}
	})
	return nil
}

// SetStudent records the chosen student.
func (f *EnrollmentForm) SetStudent(id string) {
	f.session.Update(func(v *models.EnrollmentForm) { v.StudentID = id })
}

// SetPrice records a typed price. An empty price re-enables auto-fill.
func (f *EnrollmentForm) SetPrice(price models.PriceText) {
	f.session.Update(func(v *models.EnrollmentForm) { v.Price = price })
}

// SetPaymentStatus records the initial payment status.
func (f *EnrollmentForm) SetPaymentStatus(status models.PaymentStatus) {
	f.session.Update(func(v *models.EnrollmentForm) { v.PaymentStatus = status })
}

// SelectCourse picks a course. An empty id clears the selection.
func (f *EnrollmentForm) SelectCourse(ctx context.Context, token, id string) error {
	if id == "" {
		f.session.Update(func(v *models.EnrollmentForm) { v.CourseID = "" })
		return nil
	}
	courses, err := f.catalog.Courses(ctx, token)
	if err != nil {
		return err
	}
	for _, c := range courses {
		if c.ID == id {
			f.session.Update(func(v *models.EnrollmentForm) {
				v.CourseID = id
				if v.Price.Empty() {
					v.Price = models.FormatPrice(c.Price)
				}
			})
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "course not found")
}

// SelectPackage picks a package. An empty id clears the selection.
func (f *EnrollmentForm) SelectPackage(ctx context.Context, token, id string) error {
	if id == "" {
		f.session.Update(func(v *models.EnrollmentForm) { v.PackageID = "" })
		return nil
	}
	packages, err := f.catalog.Packages(ctx, token)
	if err != nil {
		return err
	}
	for _, p := range packages {
		if p.ID == id {
			f.session.Update(func(v *models.EnrollmentForm) {
				v.PackageID = id
				if v.Price.Empty() {
					v.Price = models.FormatPrice(p.Price)
				}
			})
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "package not found")
}

// Apply changes the fields present in patch. A typed price is applied
// before any selection so auto-fill never replaces it.
func (f *EnrollmentForm) Apply(ctx context.Context, token string, patch dto.EnrollmentFormPatch) (EnrollmentFormView, error) {
	if patch.Mode != nil {
		if err := f.SetMode(*patch.Mode); err != nil {
			return f.View(), err
		}
	}
	if patch.StudentID != nil {
		f.SetStudent(*patch.StudentID)
	}
	if patch.Price != nil {
		f.SetPrice(*patch.Price)
	}
	if patch.PaymentStatus != nil {
		f.SetPaymentStatus(*patch.PaymentStatus)
	}
	mode := f.session.Value().Mode
	if patch.CourseID != nil && mode == models.ItemKindCourse {
		if err := f.SelectCourse(ctx, token, *patch.CourseID); err != nil {
			return f.View(), err
		}
	}
	if patch.PackageID != nil && mode == models.ItemKindPackage {
		if err := f.SelectPackage(ctx, token, *patch.PackageID); err != nil {
			return f.View(), err
		}
	}
	return f.View(), nil
}

// Reset discards every edit.
func (f *EnrollmentForm) Reset() EnrollmentFormView {
	f.session.Reset()
	return f.View()
}

// Submit validates the form and creates the enrollment. On success the new
// enrollment is shown at the top of the payments board and the form resets.
func (f *EnrollmentForm) Submit(ctx context.Context, token string) (*models.Enrollment, error) {
	var created *models.Enrollment
	err := f.session.Submit(ctx, func(ctx context.Context, v models.EnrollmentForm) error {
		price, _ := v.Price.Float()
		draft := models.EnrollmentDraft{
			StudentID:     v.StudentID,
			Item:          v.Item(),
			Price:         price,
			PaymentStatus: v.PaymentStatus,
		}
		var err error
		created, err = f.creator.Create(ctx, token, draft)
		return err
	})
	if err != nil {
		return nil, err
	}
	if f.board != nil {
		f.board.Prepend(*created)
	}
	f.logger.Info("enrollment created",
		zap.String("enrollment_id", created.ID),
		zap.String("item_id", created.ItemID),
		zap.Bool("is_package", created.IsPackage),
	)
	return created, nil
}
