package domain

import (
	"time"
)

// Booking represents a customer's reservation of wash services at a scheduled
// time on one resource. The booking row is also the reservation: an active
// booking occupies its time window on the reserved resource.
type Booking struct {
	ID         int64
	CustomerID int64

	// ResourceID is the resource reserved for the booking's window. It is set
	// by the allocation pipeline at creation; use AssignedResourceID for the
	// outward-facing assignment, which exists only from confirmation on.
	ResourceID *int64

	Items           []ServiceLineItem
	ScheduledAt     time.Time
	DurationMinutes int
	EstimatedPrice  float64
	Status          BookingStatus

	ActualStartAt *time.Time
	ActualEndAt   *time.Time

	Rating   *int
	Feedback *string

	// Denormalized data for history and capability matching
	VehicleSize  VehicleSize
	VehiclePlate *string
	PickupLat    *float64
	PickupLng    *float64
	Notes        *string

	PaymentReference   *string
	CancellationReason *string

	// Audit fields
	CreatedBy   int64
	ConfirmedBy *int64
	ConfirmedAt *time.Time
	StartedBy   *int64
	StartedAt   *time.Time
	CompletedAt *time.Time
	CancelledBy *int64
	CancelledAt *time.Time
	NoShowBy    *int64
	NoShowAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window returns the booking's scheduled time window
func (b *Booking) Window() TimeWindow {
	return TimeWindow{Start: b.ScheduledAt, DurationMinutes: b.DurationMinutes}
}

// IsActive returns true if the booking occupies its slot on the resource
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled && b.Status != StatusNoShow
}

// AssignedResourceID returns the resource assigned to the booking.
// The assignment exists only once the booking is confirmed; before that the
// reserved resource is an internal detail of the reservation.
func (b *Booking) AssignedResourceID() *int64 {
	switch b.Status {
	case StatusConfirmed, StatusInProgress, StatusCompleted:
		return b.ResourceID
	default:
		return nil
	}
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status.CanTransitionTo(StatusCancelled)
}

// CanBeRescheduled returns true if the booking's window may still change
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanModifyServices returns true if line items may still be added or removed
func (b *Booking) CanModifyServices() bool {
	return b.Status == StatusPending
}

// HasRating returns true if the booking has already been rated
func (b *Booking) HasRating() bool {
	return b.Rating != nil
}

// Requirements returns the capability constraints the booking places on a resource
func (b *Booking) Requirements() ServiceRequirements {
	return ServiceRequirements{
		VehicleSize: b.VehicleSize,
		PickupLat:   b.PickupLat,
		PickupLng:   b.PickupLng,
	}
}

// RecalculateTotals recomputes the derived duration and price from line
// items, applying the duration clamp and the global price cap
func (b *Booking) RecalculateTotals() {
	duration := 0
	price := 0.0
	for _, item := range b.Items {
		duration += item.TotalDurationMinutes()
		price += item.TotalPrice()
	}

	if duration < MinBookingDurationMinutes {
		duration = MinBookingDurationMinutes
	}
	if duration > MaxBookingDurationMinutes {
		duration = MaxBookingDurationMinutes
	}
	if price > MaxEstimatedPrice {
		price = MaxEstimatedPrice
	}

	b.DurationMinutes = duration
	b.EstimatedPrice = price
}

// ActualDurationMinutes returns the measured wash duration, or 0 if the
// booking has not both started and ended
func (b *Booking) ActualDurationMinutes() int {
	if b.ActualStartAt == nil || b.ActualEndAt == nil {
		return 0
	}
	return int(b.ActualEndAt.Sub(*b.ActualStartAt) / time.Minute)
}

// EnsureStatus verifies that the booking is in one of the required states.
// A violation yields a *StateConflictError describing the mismatch.
func (b *Booking) EnsureStatus(operation string, required ...BookingStatus) error {
	for _, s := range required {
		if b.Status == s {
			return nil
		}
	}
	return &StateConflictError{
		Operation: operation,
		Required:  required,
		Actual:    b.Status,
	}
}
