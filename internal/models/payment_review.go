package models

import "time"

// PaymentReview is one confirmed payment status change made by an admin.
type PaymentReview struct {
	ID           string        `db:"id" json:"id"`
	EnrollmentID string        `db:"enrollment_id" json:"enrollmentId"`
	IsPackage    bool          `db:"is_package" json:"isPackage"`
	FromStatus   PaymentStatus `db:"from_status" json:"fromStatus"`
	ToStatus     PaymentStatus `db:"to_status" json:"toStatus"`
	Price        float64       `db:"price" json:"price"`
	ReviewerID   string        `db:"reviewer_id" json:"reviewerId"`
	RequestID    string        `db:"request_id" json:"requestId,omitempty"`
	ReviewedAt   time.Time     `db:"reviewed_at" json:"reviewedAt"`
}

// PaymentStatusChangedEvent is published after a review is confirmed.
type PaymentStatusChangedEvent struct {
	ReviewID     string        `json:"reviewId"`
	EnrollmentID string        `json:"enrollmentId"`
	ItemID       string        `json:"itemId"`
	ItemName     string        `json:"itemName"`
	IsPackage    bool          `json:"isPackage"`
	StudentEmail string        `json:"studentEmail"`
	StudentPhone string        `json:"studentPhone"`
	FromStatus   PaymentStatus `json:"fromStatus"`
	ToStatus     PaymentStatus `json:"toStatus"`
	ReviewedAt   time.Time     `json:"reviewedAt"`
}
