package create_booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/pkg/ptr"
)

func validRequest() *Request {
	return &Request{
		CustomerID:  100,
		ServiceIDs:  []int64{1, 2},
		ScheduledAt: time.Date(2026, 9, 16, 10, 0, 0, 0, time.UTC),
	}
}

func TestValidateRequest(t *testing.T) {
	require.NoError(t, validateRequest(validRequest()))

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"non-positive customer", func(r *Request) { r.CustomerID = 0 }},
		{"no services", func(r *Request) { r.ServiceIDs = nil }},
		{"too many services", func(r *Request) {
			r.ServiceIDs = make([]int64, domain.MaxLineItems+1)
			for i := range r.ServiceIDs {
				r.ServiceIDs[i] = int64(i + 1)
			}
		}},
		{"non-positive service id", func(r *Request) { r.ServiceIDs = []int64{1, 0} }},
		{"zero scheduledAt", func(r *Request) { r.ScheduledAt = time.Time{} }},
		{"unknown resource type", func(r *Request) { r.ResourceType = ptr.Ptr("drone") }},
		{"lat without lng", func(r *Request) { r.PickupLat = ptr.Ptr(55.75) }},
		{"lng without lat", func(r *Request) { r.PickupLng = ptr.Ptr(37.61) }},
		{"notes too long", func(r *Request) {
			long := make([]byte, domain.MaxNotesLength+1)
			r.Notes = ptr.Ptr(string(long))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			assert.ErrorIs(t, validateRequest(req), ErrInvalidInput)
		})
	}
}

func TestValidateRequest_ResourceTypeAndPickupPair(t *testing.T) {
	req := validRequest()
	req.ResourceType = ptr.Ptr(string(domain.ResourceMobileCrew))
	req.PickupLat = ptr.Ptr(55.75)
	req.PickupLng = ptr.Ptr(37.61)
	assert.NoError(t, validateRequest(req))
}

func TestValidateSchedulingWindow(t *testing.T) {
	now := time.Date(2026, 9, 16, 10, 0, 0, 0, time.UTC)

	t.Run("too late", func(t *testing.T) {
		err := validateSchedulingWindow(now.Add(time.Hour), now, 120, 90)
		assert.ErrorIs(t, err, ErrTooLateToBook)
	})

	t.Run("exactly at lead time", func(t *testing.T) {
		assert.NoError(t, validateSchedulingWindow(now.Add(2*time.Hour), now, 120, 90))
	})

	t.Run("beyond horizon", func(t *testing.T) {
		err := validateSchedulingWindow(now.AddDate(0, 0, 91), now, 120, 90)
		assert.ErrorIs(t, err, ErrDateTooFarInFuture)
	})

	t.Run("at horizon boundary", func(t *testing.T) {
		assert.NoError(t, validateSchedulingWindow(now.AddDate(0, 0, 90), now, 120, 90))
	})

	t.Run("horizon disabled", func(t *testing.T) {
		assert.NoError(t, validateSchedulingWindow(now.AddDate(1, 0, 0), now, 120, 0))
	})
}

func TestBuildLineItems(t *testing.T) {
	services := []*domain.WashService{
		{ID: 1, Name: "Мойка", Price: 800, DurationMinutes: 45},
		{ID: 2, Name: "Воск", Price: 500, DurationMinutes: 15},
	}

	// повтор услуги агрегируется в количество, порядок первых вхождений сохраняется
	items := buildLineItems([]int64{2, 1, 2}, services)
	require.Len(t, items, 2)

	assert.Equal(t, int64(2), items[0].ServiceID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(1), items[1].ServiceID)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestUniqueServiceIDs(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, uniqueServiceIDs([]int64{3, 1, 3, 2, 1}))
}

func TestDayBounds(t *testing.T) {
	moment := time.Date(2026, 9, 16, 15, 30, 0, 0, time.UTC)
	start, end := dayBounds(moment)

	assert.Equal(t, time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 9, 17, 0, 0, 0, 0, time.UTC), end)
}
