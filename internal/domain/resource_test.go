package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-WashService/pkg/ptr"
)

func TestVehicleSize_FitsIn(t *testing.T) {
	assert.True(t, SizeCompact.FitsIn(SizeCompact))
	assert.True(t, SizeCompact.FitsIn(SizeTruck))
	assert.True(t, SizeSedan.FitsIn(SizeSUV))
	assert.False(t, SizeTruck.FitsIn(SizeVan))
	assert.False(t, SizeSUV.FitsIn(SizeSedan))
	assert.False(t, VehicleSize("bus").FitsIn(SizeTruck))
}

func TestFixedBay_CanServe(t *testing.T) {
	bay := &FixedBay{ID: 1, MaxVehicleSize: SizeSUV, Status: ResourceActive}

	assert.True(t, bay.CanServe(ServiceRequirements{VehicleSize: SizeCompact}))
	assert.True(t, bay.CanServe(ServiceRequirements{VehicleSize: SizeSUV}))
	assert.False(t, bay.CanServe(ServiceRequirements{VehicleSize: SizeVan}))

	// без класса автомобиля подходит любой пост
	assert.True(t, bay.CanServe(ServiceRequirements{}))

	// выездное мытье обслуживают только мобильные бригады
	assert.False(t, bay.CanServe(ServiceRequirements{
		VehicleSize: SizeCompact,
		PickupLat:   ptr.Ptr(55.76),
		PickupLng:   ptr.Ptr(37.62),
	}))
}

func TestMobileCrew_CanServe(t *testing.T) {
	// база в центре Москвы, радиус 10 км
	crew := &MobileCrew{
		ID:              2,
		BaseLat:         55.7558,
		BaseLng:         37.6173,
		ServiceRadiusKm: 10,
		Status:          ResourceActive,
	}

	t.Run("within radius", func(t *testing.T) {
		req := ServiceRequirements{
			VehicleSize: SizeSedan,
			PickupLat:   ptr.Ptr(55.76),
			PickupLng:   ptr.Ptr(37.62),
		}
		assert.True(t, crew.CanServe(req))
	})

	t.Run("outside radius", func(t *testing.T) {
		req := ServiceRequirements{
			VehicleSize: SizeSedan,
			PickupLat:   ptr.Ptr(56.0),
			PickupLng:   ptr.Ptr(38.0),
		}
		assert.False(t, crew.CanServe(req))
	})

	t.Run("no pickup point", func(t *testing.T) {
		assert.False(t, crew.CanServe(ServiceRequirements{VehicleSize: SizeSedan}))
	})
}

func TestHaversineKm(t *testing.T) {
	// Москва - Санкт-Петербург, около 634 км
	dist := HaversineKm(55.7558, 37.6173, 59.9343, 30.3351)
	assert.InDelta(t, 634, dist, 5)

	assert.InDelta(t, 0, HaversineKm(55.7558, 37.6173, 55.7558, 37.6173), 0.001)
}
