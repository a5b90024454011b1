package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WashService/pkg/ptr"
)

func TestBooking_RecalculateTotals(t *testing.T) {
	t.Run("sums items", func(t *testing.T) {
		b := &Booking{Items: []ServiceLineItem{
			{UnitPrice: 500, UnitDurationMinutes: 30, Quantity: 1},
			{UnitPrice: 300, UnitDurationMinutes: 20, Quantity: 2},
		}}
		b.RecalculateTotals()

		assert.Equal(t, 70, b.DurationMinutes)
		assert.Equal(t, 1100.0, b.EstimatedPrice)
	})

	t.Run("clamps duration to minimum", func(t *testing.T) {
		b := &Booking{Items: []ServiceLineItem{
			{UnitPrice: 100, UnitDurationMinutes: 10, Quantity: 1},
		}}
		b.RecalculateTotals()

		assert.Equal(t, MinBookingDurationMinutes, b.DurationMinutes)
	})

	t.Run("clamps duration to maximum", func(t *testing.T) {
		b := &Booking{Items: []ServiceLineItem{
			{UnitPrice: 100, UnitDurationMinutes: 60, Quantity: 10},
		}}
		b.RecalculateTotals()

		assert.Equal(t, MaxBookingDurationMinutes, b.DurationMinutes)
	})

	t.Run("caps price", func(t *testing.T) {
		b := &Booking{Items: []ServiceLineItem{
			{UnitPrice: 3000, UnitDurationMinutes: 30, Quantity: 5},
		}}
		b.RecalculateTotals()

		assert.Equal(t, MaxEstimatedPrice, b.EstimatedPrice)
	})
}

func TestBooking_AssignedResourceID(t *testing.T) {
	resourceID := int64(7)

	tests := []struct {
		status  BookingStatus
		visible bool
	}{
		{StatusPending, false},
		{StatusConfirmed, true},
		{StatusInProgress, true},
		{StatusCompleted, true},
		{StatusCancelled, false},
		{StatusNoShow, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			b := &Booking{ResourceID: &resourceID, Status: tt.status}
			if tt.visible {
				require.NotNil(t, b.AssignedResourceID())
				assert.Equal(t, resourceID, *b.AssignedResourceID())
			} else {
				assert.Nil(t, b.AssignedResourceID())
			}
		})
	}
}

func TestBooking_EnsureStatus(t *testing.T) {
	b := &Booking{Status: StatusPending}

	require.NoError(t, b.EnsureStatus("cancel", StatusPending, StatusConfirmed))

	err := b.EnsureStatus("start", StatusConfirmed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStateConflict)

	var conflict *StateConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "start", conflict.Operation)
	assert.Equal(t, StatusPending, conflict.Actual)
}

func TestBooking_IsActive(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusPending}).IsActive())
	assert.True(t, (&Booking{Status: StatusConfirmed}).IsActive())
	assert.True(t, (&Booking{Status: StatusCompleted}).IsActive())
	assert.False(t, (&Booking{Status: StatusCancelled}).IsActive())
	assert.False(t, (&Booking{Status: StatusNoShow}).IsActive())
}

func TestBooking_ActualDurationMinutes(t *testing.T) {
	start := mustTime(t, "2026-09-15T10:00:00Z")
	end := start.Add(95 * time.Minute)

	b := &Booking{ActualStartAt: &start, ActualEndAt: &end}
	assert.Equal(t, 95, b.ActualDurationMinutes())

	assert.Equal(t, 0, (&Booking{ActualStartAt: &start}).ActualDurationMinutes())
	assert.Equal(t, 0, (&Booking{}).ActualDurationMinutes())
}

func TestBooking_CanModifyServices(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusPending}).CanModifyServices())
	assert.False(t, (&Booking{Status: StatusConfirmed}).CanModifyServices())
	assert.False(t, (&Booking{Status: StatusInProgress}).CanModifyServices())
}

func TestBooking_HasRating(t *testing.T) {
	assert.False(t, (&Booking{}).HasRating())
	assert.True(t, (&Booking{Rating: ptr.Ptr(5)}).HasRating())
}
