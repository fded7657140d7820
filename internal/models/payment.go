package models

import "strings"

// PaymentStatus is the admin-reviewed state of a claimed transfer.
type PaymentStatus string

// Possible payment statuses.
const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// ParsePaymentStatus accepts any casing and surrounding spaces.
func ParsePaymentStatus(raw string) (PaymentStatus, bool) {
	status := PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// Effective maps unknown or empty statuses to pending, which is how they
// are displayed.
func (s PaymentStatus) Effective() PaymentStatus {
	if s.Valid() {
		return s
	}
	return PaymentStatusPending
}

// Targetable reports whether an admin may move an enrollment into s.
// Nothing ever goes back to pending.
func (s PaymentStatus) Targetable() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// CanTransition allows pending→paid, pending→failed, paid→failed and
// failed→paid. Same-state moves are no-ops and are not transitions.
func CanTransition(from, to PaymentStatus) bool {
	from = from.Effective()
	return to.Targetable() && from != to
}

// AvailableTransitions lists the targets offered for an enrollment in from.
func AvailableTransitions(from PaymentStatus) []PaymentStatus {
	var out []PaymentStatus
	for _, to := range []PaymentStatus{PaymentStatusPaid, PaymentStatusFailed} {
		if CanTransition(from, to) {
			out = append(out, to)
		}
	}
	return out
}

// StatusFilter narrows the payments list. "all" disables filtering.
type StatusFilter string

// StatusFilterAll matches every payment status.
const StatusFilterAll StatusFilter = "all"

// ParseStatusFilter falls back to all for empty or unknown values.
func ParseStatusFilter(raw string) StatusFilter {
	if status, ok := ParsePaymentStatus(raw); ok {
		return StatusFilter(status)
	}
	return StatusFilterAll
}

// Matches reports whether a payment in status passes the filter.
func (f StatusFilter) Matches(status PaymentStatus) bool {
	return f == StatusFilterAll || f == "" || PaymentStatus(f) == status.Effective()
}
