package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/course-backoffice/internal/models"
)

var jsonNull = []byte("null")

// Number decodes a JSON number, a numeric string or null. The backend is
// not consistent about which one it sends for prices.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float64 returns the value as a float64.
func (n Number) Float64() float64 { return float64(n) }

// Ref is a reference that may arrive as a bare id, a populated document or
// null. Populated documents keep their name and price.
type Ref struct {
	ID    string
	Name  string
	Price float64
	// Populated is true when the reference arrived as an object.
	Populated bool
}

type refDoc struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Price   Number `json:"price"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = Ref{}
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	var doc refDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	r.ID = firstNonEmpty(doc.MongoID, doc.ID)
	r.Name = doc.Name
	r.Price = doc.Price.Float64()
	r.Populated = true
	return nil
}

// MarshalJSON writes the bare id so a Ref round-trips as a flat field.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return jsonNull, nil
	}
	return json.Marshal(r.ID)
}

// RawEnrollment is an enrollment record as the backend returns it. Course
// and package purchases use different fields; the gateway's own output
// fields are accepted too so that normalized records can be fed back in.
type RawEnrollment struct {
	MongoID       string `json:"_id"`
	ID            string `json:"id"`
	UserEmail     string `json:"userEmail"`
	StudentEmail  string `json:"studentEmail"`
	PhoneNumber   string `json:"phoneNumber"`
	StudentPhone  string `json:"studentPhone"`
	StudentName   string `json:"studentName"`
	ItemName      string `json:"itemName"`
	ItemID        string `json:"itemId"`
	CourseName    string `json:"courseName"`
	PackageName   string `json:"packageName"`
	CourseID      Ref    `json:"courseId"`
	PackageID     Ref    `json:"packageId"`
	IsPackage     *bool  `json:"isPackage"`
	Price         Number `json:"price"`
	PaymentStatus string `json:"paymentStatus"`
	CreatedAt     string `json:"createdAt"`
}

// RawPagination is the backend's pagination block. Any of the fields may be
// missing. Whether the block was sent at all is the nil-ness of
// EnrollmentsEnvelope.Pagination.
type RawPagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNextPage bool `json:"hasNextPage"`
	Limit       int  `json:"limit"`
}

// EnrollmentsEnvelope is the body of GET /active/admin/enrollments.
type EnrollmentsEnvelope struct {
	Enrollments []RawEnrollment `json:"enrollments"`
	Pagination  *RawPagination  `json:"pagination"`
}

// CreatedEnrollmentEnvelope is the body returned by the admin create routes.
type CreatedEnrollmentEnvelope struct {
	Enrollment RawEnrollment `json:"enrollment"`
	Message    string        `json:"message"`
}

// RawCourse is a course document.
type RawCourse struct {
	MongoID     string          `json:"_id"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       Number          `json:"price"`
	Level       string          `json:"level"`
	ImageURL    string          `json:"imageUrl"`
	IsFree      bool            `json:"isFree"`
	Chapters    json.RawMessage `json:"chapters"`
}

// ToModel converts the document. Chapters may be a count or a list.
func (c RawCourse) ToModel() models.Course {
	return models.Course{
		ID:          firstNonEmpty(c.MongoID, c.ID),
		Name:        c.Name,
		Description: c.Description,
		Price:       c.Price.Float64(),
		Level:       c.Level,
		ImageURL:    c.ImageURL,
		IsFree:      c.IsFree,
		Chapters:    countChapters(c.Chapters),
	}
}

func countChapters(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return 0
	}
	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err == nil {
			return len(list)
		}
		return 0
	}
	var n Number
	if err := n.UnmarshalJSON(raw); err != nil {
		return 0
	}
	return int(n)
}

// CoursesEnvelope is the body of GET /course/allCourses.
type CoursesEnvelope struct {
	Courses []RawCourse `json:"courses"`
}

// RawPackage is a package document.
type RawPackage struct {
	MongoID            string `json:"_id"`
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	ImageURL           string `json:"imageUrl"`
	Price              Number `json:"price"`
	OriginalPrice      Number `json:"originalPrice"`
	DiscountPercentage Number `json:"discountPercentage"`
	Level              string `json:"level"`
	Courses            []Ref  `json:"courses"`
	CreatedAt          string `json:"createdAt"`
}

// ToModel converts the document.
func (p RawPackage) ToModel() models.Package {
	courses := make([]models.PackageCourse, 0, len(p.Courses))
	for _, ref := range p.Courses {
		if ref.ID == "" {
			continue
		}
		courses = append(courses, models.PackageCourse{ID: ref.ID, Name: ref.Name, Price: ref.Price})
	}
	return models.Package{
		ID:                 firstNonEmpty(p.MongoID, p.ID),
		Name:               p.Name,
		Description:        p.Description,
		ImageURL:           p.ImageURL,
		Price:              p.Price.Float64(),
		OriginalPrice:      p.OriginalPrice.Float64(),
		DiscountPercentage: int(p.DiscountPercentage),
		Level:              p.Level,
		Courses:            courses,
		CreatedAt:          p.CreatedAt,
	}
}

// PackagesEnvelope is the body of the package list routes.
type PackagesEnvelope struct {
	Packages []RawPackage `json:"packages"`
}

// PackageEnvelope is the body of GET /packages/:id.
type PackageEnvelope struct {
	Package *RawPackage `json:"package"`
}

// RawStudent is a user document.
type RawStudent struct {
	MongoID     string `json:"_id"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// ToModel converts the document.
func (s RawStudent) ToModel() models.Student {
	return models.Student{
		ID:          firstNonEmpty(s.MongoID, s.ID),
		Name:        s.Name,
		Email:       s.Email,
		PhoneNumber: s.PhoneNumber,
	}
}

// StudentsEnvelope is the body of GET /user/students.
type StudentsEnvelope struct {
	Data []RawStudent `json:"data"`
}

// RawEnrolledCourse is one entry of a student's GET /active answer. The
// course reference is null when the course was deleted.
type RawEnrolledCourse struct {
	CourseID    *RawCourse `json:"courseId"`
	FromPackage bool       `json:"fromPackage"`
	PackageName string     `json:"packageName"`
}

// ActiveEnvelope is the body of GET /active.
type ActiveEnvelope struct {
	IsHeEnrolled       bool                `json:"isHeEnrolled"`
	CoursesAreEnrolled []RawEnrolledCourse `json:"coursesAreEnrolled"`
}

// RawEnrolledPackage is one entry of GET /active/packages/all.
type RawEnrolledPackage struct {
	MongoID            string `json:"_id"`
	PackageID          Ref    `json:"packageId"`
	PackageName        string `json:"packageName"`
	PackageDescription string `json:"packageDescription"`
	PackagePrice       Number `json:"packagePrice"`
	Courses            []Ref  `json:"courses"`
	EnrolledAt         string `json:"enrolledAt"`
}

// ActivePackagesEnvelope is the body of GET /active/packages/all.
type ActivePackagesEnvelope struct {
	Success             bool                 `json:"success"`
	HasEnrolledPackages bool                 `json:"hasEnrolledPackages"`
	Packages            []RawEnrolledPackage `json:"packages"`
}

// BackendError is the JSON error body the backend sends with non-2xx codes.
type BackendError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Text returns the most specific message available.
func (e BackendError) Text() string {
	return firstNonEmpty(strings.TrimSpace(e.Message), strings.TrimSpace(e.Error))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
