package models

import "time"

// UnknownItemName is shown when neither a course nor a package name could
// be resolved ("unspecified" in Arabic).
const UnknownItemName = "غير محدد"

// ItemKind discriminates what an enrollment was bought for.
type ItemKind string

// Item kinds.
const (
	ItemKindCourse  ItemKind = "course"
	ItemKindPackage ItemKind = "package"
)

// Enrollment is the unified view of a course or package purchase.
// IsPackage is the only discriminator: ItemID names a package when it is
// true and a course otherwise.
type Enrollment struct {
	ID            string        `json:"id"`
	StudentEmail  string        `json:"studentEmail"`
	StudentPhone  string        `json:"studentPhone"`
	StudentName   string        `json:"studentName"`
	ItemName      string        `json:"itemName"`
	ItemID        string        `json:"itemId"`
	IsPackage     bool          `json:"isPackage"`
	Price         float64       `json:"price"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	CreatedAt     string        `json:"createdAt"`
}

// Kind returns the item kind implied by IsPackage.
func (e Enrollment) Kind() ItemKind {
	if e.IsPackage {
		return ItemKindPackage
	}
	return ItemKindCourse
}

// CreatedTime parses CreatedAt; unparsable values yield the zero time.
func (e Enrollment) CreatedTime() time.Time {
	if e.CreatedAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, e.CreatedAt); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// EnrollmentSummary counts payment statuses across a list of enrollments.
// CurrentPageOnly is set when the list is a server page rather than the
// full collection.
type EnrollmentSummary struct {
	Paid            int  `json:"paid"`
	Pending         int  `json:"pending"`
	Failed          int  `json:"failed"`
	CurrentPageOnly bool `json:"currentPageOnly"`
}

// Summarize counts statuses, treating unknown ones as pending.
func Summarize(items []Enrollment, currentPageOnly bool) EnrollmentSummary {
	summary := EnrollmentSummary{CurrentPageOnly: currentPageOnly}
	for _, item := range items {
		switch item.PaymentStatus.Effective() {
		case PaymentStatusPaid:
			summary.Paid++
		case PaymentStatusFailed:
			summary.Failed++
		default:
			summary.Pending++
		}
	}
	return summary
}

// StudentEnrollments is a student's own merged view of purchased items.
type StudentEnrollments struct {
	Courses  []EnrolledCourse  `json:"courses"`
	Packages []EnrolledPackage `json:"packages"`
	// PackagesUnavailable is set when the packages lookup failed and only
	// courses are shown.
	PackagesUnavailable bool `json:"packagesUnavailable,omitempty"`
}

// EnrolledCourse is a course a student has access to, directly or via a package.
type EnrolledCourse struct {
	CourseID    string `json:"courseId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Chapters    int    `json:"chapters"`
	FromPackage bool   `json:"fromPackage"`
	PackageName string `json:"packageName,omitempty"`
}

// EnrolledPackage is a package a student bought.
type EnrolledPackage struct {
	PackageID   string   `json:"packageId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	CourseIDs   []string `json:"courseIds"`
	EnrolledAt  string   `json:"enrolledAt"`
}

// ItemIDs lists every course and package id in the view.
func (s StudentEnrollments) ItemIDs() []string {
	ids := make([]string, 0, len(s.Courses)+len(s.Packages))
	for _, c := range s.Courses {
		if c.CourseID != "" {
			ids = append(ids, c.CourseID)
		}
	}
	for _, p := range s.Packages {
		if p.PackageID != "" {
			ids = append(ids, p.PackageID)
		}
	}
	return ids
}

// EnrollmentItem is what an enrollment is for: a CourseItem or a
// PackageItem. Code that needs to tell them apart switches on the type.
type EnrollmentItem interface {
	Kind() ItemKind
	ItemID() string
}

// CourseItem is a direct course purchase.
type CourseItem struct {
	CourseID string `json:"courseId"`
}

// Kind implements EnrollmentItem.
func (CourseItem) Kind() ItemKind { return ItemKindCourse }

// ItemID implements EnrollmentItem.
func (c CourseItem) ItemID() string { return c.CourseID }

// PackageItem is a package purchase.
type PackageItem struct {
	PackageID string `json:"packageId"`
}

// Kind implements EnrollmentItem.
func (PackageItem) Kind() ItemKind { return ItemKindPackage }

// ItemID implements EnrollmentItem.
func (p PackageItem) ItemID() string { return p.PackageID }

// Item returns the variant backing e.
func (e Enrollment) Item() EnrollmentItem {
	if e.IsPackage {
		return PackageItem{PackageID: e.ItemID}
	}
	return CourseItem{CourseID: e.ItemID}
}

// EnrollmentDraft is a validated admin request to create an enrollment.
type EnrollmentDraft struct {
	StudentID     string
	Item          EnrollmentItem
	Price         float64
	PaymentStatus PaymentStatus
}
