package domain

import "math"

// ResourceType discriminates the two resource shapes
type ResourceType string

const (
	ResourceFixedBay   ResourceType = "fixed_bay"
	ResourceMobileCrew ResourceType = "mobile_crew"
)

// ResourceStatus is the operating status of a resource
type ResourceStatus string

const (
	ResourceActive   ResourceStatus = "active"
	ResourceInactive ResourceStatus = "inactive"
)

// ServiceRequirements are the capability constraints a booking places on a
// resource: the vehicle's size class, and for mobile crews the pickup point.
type ServiceRequirements struct {
	VehicleSize VehicleSize
	PickupLat   *float64
	PickupLng   *float64
}

// HasPickupLocation returns true if the requirements include a pickup point
func (r ServiceRequirements) HasPickupLocation() bool {
	return r.PickupLat != nil && r.PickupLng != nil
}

// Resource is an allocatable unit of wash capacity. Implemented by FixedBay
// and MobileCrew; bookings reference resources by identifier only.
type Resource interface {
	ResourceID() int64
	Type() ResourceType
	ResourceName() string
	OperatingStatus() ResourceStatus
	IsActive() bool
	// CanServe reports whether the resource is capable of serving a booking
	// with the given requirements. Time availability is checked separately.
	CanServe(req ServiceRequirements) bool
}

// FixedBay is a stationary wash bay limited by the vehicle size it accommodates
type FixedBay struct {
	ID             int64
	Name           string
	MaxVehicleSize VehicleSize
	Equipment      []string
	Status         ResourceStatus
}

// ResourceID returns the bay identifier
func (b *FixedBay) ResourceID() int64 { return b.ID }

// Type returns ResourceFixedBay
func (b *FixedBay) Type() ResourceType { return ResourceFixedBay }

// ResourceName returns the bay name
func (b *FixedBay) ResourceName() string { return b.Name }

// OperatingStatus returns the bay operating status
func (b *FixedBay) OperatingStatus() ResourceStatus { return b.Status }

// IsActive returns true if the bay accepts new allocations
func (b *FixedBay) IsActive() bool { return b.Status == ResourceActive }

// CanServe returns true if the vehicle fits the bay's size rating.
// Pickup requests are mobile-only and never match a bay; an unset size
// matches any bay.
func (b *FixedBay) CanServe(req ServiceRequirements) bool {
	if req.HasPickupLocation() {
		return false
	}
	if req.VehicleSize == "" {
		return true
	}
	return req.VehicleSize.FitsIn(b.MaxVehicleSize)
}

// MobileCrew is a travelling wash crew bounded by a service radius around
// its base and by a daily booking cap
type MobileCrew struct {
	ID                int64
	Name              string
	BaseLat           float64
	BaseLng           float64
	ServiceRadiusKm   float64
	MaxBookingsPerDay int
	Equipment         []string
	Status            ResourceStatus
}

// ResourceID returns the crew identifier
func (c *MobileCrew) ResourceID() int64 { return c.ID }

// Type returns ResourceMobileCrew
func (c *MobileCrew) Type() ResourceType { return ResourceMobileCrew }

// ResourceName returns the crew name
func (c *MobileCrew) ResourceName() string { return c.Name }

// OperatingStatus returns the crew operating status
func (c *MobileCrew) OperatingStatus() ResourceStatus { return c.Status }

// IsActive returns true if the crew accepts new allocations
func (c *MobileCrew) IsActive() bool { return c.Status == ResourceActive }

// CanServe returns true if the pickup point lies within the crew's radius
func (c *MobileCrew) CanServe(req ServiceRequirements) bool {
	if !req.HasPickupLocation() {
		return false
	}
	return HaversineKm(c.BaseLat, c.BaseLng, *req.PickupLat, *req.PickupLng) <= c.ServiceRadiusKm
}

// HaversineKm calculates the geodesic distance between two coordinates in kilometers
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	lat1Rad := degToRad(lat1)
	lat2Rad := degToRad(lat2)
	dLat := degToRad(lat2 - lat1)
	dLng := degToRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
