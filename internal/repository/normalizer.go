package repository

import (
	"strings"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
)

// unknownCourseName is what the backend writes when a course lookup failed.
const unknownCourseName = "N/A"

// NormalizeEnrollment converts a backend enrollment record, course or
// package, into the unified view. It never fails: records missing both
// links come out with an empty ItemID and the placeholder name.
func NormalizeEnrollment(raw dto.RawEnrollment) models.Enrollment {
	isPackage := raw.IsPackage != nil && *raw.IsPackage

	return models.Enrollment{
		ID:            firstNonEmpty(raw.ID, raw.MongoID),
		StudentEmail:  firstNonEmpty(raw.StudentEmail, raw.UserEmail),
		StudentPhone:  firstNonEmpty(raw.StudentPhone, raw.PhoneNumber),
		StudentName:   raw.StudentName,
		ItemName:      resolveItemName(raw, isPackage),
		ItemID:        resolveItemID(raw, isPackage),
		IsPackage:     isPackage,
		Price:         raw.Price.Float64(),
		PaymentStatus: models.PaymentStatus(raw.PaymentStatus),
		CreatedAt:     raw.CreatedAt,
	}
}

// NormalizeEnrollments maps a whole page. The result is never nil.
func NormalizeEnrollments(raws []dto.RawEnrollment) []models.Enrollment {
	out := make([]models.Enrollment, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NormalizeEnrollment(raw))
	}
	return out
}

func resolveItemName(raw dto.RawEnrollment, isPackage bool) string {
	if strings.TrimSpace(raw.ItemName) != "" {
		return raw.ItemName
	}
	if isPackage {
		if raw.PackageName != "" {
			return raw.PackageName
		}
		if raw.PackageID.Name != "" {
			return raw.PackageID.Name
		}
	}
	if raw.CourseName != "" && raw.CourseName != unknownCourseName {
		return raw.CourseName
	}
	if !isPackage && raw.CourseID.Name != "" {
		return raw.CourseID.Name
	}
	return models.UnknownItemName
}

func resolveItemID(raw dto.RawEnrollment, isPackage bool) string {
	if raw.ItemID != "" {
		return raw.ItemID
	}
	if isPackage {
		return raw.PackageID.ID
	}
	return raw.CourseID.ID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
