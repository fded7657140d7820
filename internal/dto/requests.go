package dto

import "github.com/noah-isme/course-backoffice/internal/models"

// CreateCourseEnrollmentBody is sent to POST /active/admin/create.
type CreateCourseEnrollmentBody struct {
	StudentID     string               `json:"studentId"`
	CourseID      string               `json:"courseId"`
	Price         float64              `json:"price"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// CreatePackageEnrollmentBody is sent to POST /active-package/admin/create.
type CreatePackageEnrollmentBody struct {
	StudentID     string               `json:"studentId"`
	PackageID     string               `json:"packageId"`
	Price         float64              `json:"price"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	IsPackage     bool                 `json:"isPackage"`
}

// PaymentStatusBody is sent to PUT /active/payment/:id.
type PaymentStatusBody struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// ClaimBody is sent to POST /active when a student reports a transfer.
type ClaimBody struct {
	PhoneNumber string  `json:"phoneNumber"`
	CourseID    string  `json:"courseId"`
	Price       float64 `json:"price"`
}

// PackageBody is sent to POST /packages and PUT /packages/:id.
type PackageBody struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	ImageURL           string   `json:"imageUrl"`
	Price              float64  `json:"price"`
	Courses            []string `json:"courses"`
	Level              string   `json:"level"`
	OriginalPrice      float64  `json:"originalPrice"`
	DiscountPercentage int      `json:"discountPercentage"`
}

// EnrollmentFormPatch changes some fields of an admin's enrollment form.
// Nil fields are left alone.
type EnrollmentFormPatch struct {
	Mode          *models.ItemKind      `json:"mode"`
	StudentID     *string               `json:"studentId"`
	CourseID      *string               `json:"courseId"`
	PackageID     *string               `json:"packageId"`
	Price         *models.PriceText     `json:"price"`
	PaymentStatus *models.PaymentStatus `json:"paymentStatus"`
}

// SetPaymentStatusRequest is the body of PUT /admin/payments/:id/status.
type SetPaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus" validate:"required"`
}

// SortRequest is the body of POST /admin/payments/sort.
type SortRequest struct {
	SortBy models.SortField `json:"sortBy" validate:"required,oneof=date amount"`
}

// QuoteRequest is the body of POST /admin/packages/quote.
type QuoteRequest struct {
	Courses []string         `json:"courses"`
	Price   models.PriceText `json:"price"`
}

// ClaimRequest is the body of POST /checkout/:id/claim.
type ClaimRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}
