package models

import "strings"

// DefaultPackageLevel is the grade new packages default to
// ("first secondary grade" in Arabic).
const DefaultPackageLevel = "الصف الأول الثانوي"

// Course is a course as listed by the platform backend.
type Course struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Level       string  `json:"level"`
	ImageURL    string  `json:"imageUrl"`
	IsFree      bool    `json:"isFree"`
	Chapters    int     `json:"chapters"`
}

// PackageCourse is a course reference inside a package. Name and Price are
// only known when the backend populated the reference.
type PackageCourse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Price float64 `json:"price,omitempty"`
}

// Package bundles at least two courses at a discount.
type Package struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	ImageURL           string          `json:"imageUrl"`
	Price              float64         `json:"price"`
	OriginalPrice      float64         `json:"originalPrice"`
	DiscountPercentage int             `json:"discountPercentage"`
	Level              string          `json:"level"`
	Courses            []PackageCourse `json:"courses"`
	CreatedAt          string          `json:"createdAt"`
}

// CourseIDs returns the ids of the bundled courses.
func (p Package) CourseIDs() []string {
	ids := make([]string, 0, len(p.Courses))
	for _, c := range p.Courses {
		if c.ID != "" {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Student is a platform user that can be enrolled.
type Student struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// MatchesText performs the in-memory student filter: case-insensitive on
// name and email, plain substring on phone number.
func (s Student) MatchesText(query string) bool {
	if query == "" {
		return true
	}
	lower := strings.ToLower(query)
	return strings.Contains(strings.ToLower(s.Name), lower) ||
		strings.Contains(strings.ToLower(s.Email), lower) ||
		strings.Contains(s.PhoneNumber, query)
}

// CatalogItem is the result of resolving an id against packages then courses.
type CatalogItem struct {
	Kind    ItemKind `json:"kind"`
	Course  *Course  `json:"course,omitempty"`
	Package *Package `json:"package,omitempty"`
}

// ID returns the resolved item's id.
func (i CatalogItem) ID() string {
	if i.Package != nil {
		return i.Package.ID
	}
	if i.Course != nil {
		return i.Course.ID
	}
	return ""
}

// Name returns the resolved item's display name.
func (i CatalogItem) Name() string {
	if i.Package != nil {
		return i.Package.Name
	}
	if i.Course != nil {
		return i.Course.Name
	}
	return ""
}

// Price returns the resolved item's list price.
func (i CatalogItem) Price() float64 {
	if i.Package != nil {
		return i.Package.Price
	}
	if i.Course != nil {
		return i.Course.Price
	}
	return 0
}
