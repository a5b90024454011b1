package domain

import "time"

// FeeKind discriminates the fee types attached to a booking
type FeeKind string

const (
	FeeCancellation FeeKind = "cancellation"
	FeeNoShow       FeeKind = "no_show"
	FeeOvertime     FeeKind = "overtime"
)

// IsValid returns true if the kind is a recognized fee kind
func (k FeeKind) IsValid() bool {
	switch k {
	case FeeCancellation, FeeNoShow, FeeOvertime:
		return true
	}
	return false
}

// FeeLedgerEntry records a computed fee at the moment it is charged.
// Entries are immutable; at most one entry exists per (booking, kind).
type FeeLedgerEntry struct {
	ID        int64
	BookingID int64
	Kind      FeeKind
	Amount    float64
	ChargedAt time.Time
}
