package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// PriceText is a price as typed into a form. It decodes from a JSON string
// or number and stays empty until something is entered.
type PriceText string

// UnmarshalJSON implements json.Unmarshaler.
func (p *PriceText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PriceText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = PriceText(n.String())
	return nil
}

// Empty reports whether nothing was entered.
func (p PriceText) Empty() bool {
	return strings.TrimSpace(string(p)) == ""
}

// Float parses the price. NaN and infinities are not prices.
func (p PriceText) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(p)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatPrice renders a list price the way it is pre-filled into forms.
func FormatPrice(v float64) PriceText {
	return PriceText(strconv.FormatFloat(v, 'f', -1, 64))
}

// EnrollmentForm is the admin "add enrollment" form. Mode decides whether
// CourseID or PackageID is in use; the other one is always empty.
type EnrollmentForm struct {
	Mode          ItemKind      `json:"mode" validate:"oneof=course package"`
	StudentID     string        `json:"studentId" validate:"required"`
	CourseID      string        `json:"courseId" validate:"required_if=Mode course"`
	PackageID     string        `json:"packageId" validate:"required_if=Mode package"`
	Price         PriceText     `json:"price" validate:"required"`
	PaymentStatus PaymentStatus `json:"paymentStatus" validate:"oneof=pending paid failed"`
}

// NewEnrollmentForm returns an empty course-mode form defaulting to paid.
func NewEnrollmentForm() EnrollmentForm {
	return EnrollmentForm{Mode: ItemKindCourse, PaymentStatus: PaymentStatusPaid}
}

// Item returns the selected course or package.
func (f EnrollmentForm) Item() EnrollmentItem {
	if f.Mode == ItemKindPackage {
		return PackageItem{PackageID: f.PackageID}
	}
	return CourseItem{CourseID: f.CourseID}
}

// PackageForm is the admin create/edit package form.
type PackageForm struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description" validate:"required"`
	ImageURL    string    `json:"imageUrl" validate:"required"`
	Price       PriceText `json:"price" validate:"required"`
	Courses     []string  `json:"courses" validate:"min=2"`
	Level       string    `json:"level"`
}

// NewPackageForm returns an empty form at the default level.
func NewPackageForm() PackageForm {
	return PackageForm{Courses: []string{}, Level: DefaultPackageLevel}
}

// PackageFormFrom seeds an edit form from a stored package.
func PackageFormFrom(p Package) PackageForm {
	level := p.Level
	if level == "" {
		level = DefaultPackageLevel
	}
	return PackageForm{
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       FormatPrice(p.Price),
		Courses:     p.CourseIDs(),
		Level:       level,
	}
}
