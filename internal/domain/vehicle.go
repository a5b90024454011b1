package domain

import "fmt"

// VehicleSize is the size class of a customer's vehicle. Classes form a
// hierarchy: a bay rated for a larger class accommodates all smaller ones.
type VehicleSize string

const (
	SizeCompact VehicleSize = "compact"
	SizeSedan   VehicleSize = "sedan"
	SizeSUV     VehicleSize = "suv"
	SizeVan     VehicleSize = "van"
	SizeTruck   VehicleSize = "truck"
)

// sizeRank orders vehicle size classes from smallest to largest
var sizeRank = map[VehicleSize]int{
	SizeCompact: 1,
	SizeSedan:   2,
	SizeSUV:     3,
	SizeVan:     4,
	SizeTruck:   5,
}

// IsValid returns true if the size is a recognized class
func (s VehicleSize) IsValid() bool {
	_, ok := sizeRank[s]
	return ok
}

// FitsIn returns true if a vehicle of this class fits a bay rated for max
func (s VehicleSize) FitsIn(max VehicleSize) bool {
	sr, ok1 := sizeRank[s]
	mr, ok2 := sizeRank[max]
	return ok1 && ok2 && sr <= mr
}

// String returns the string representation of the size class
func (s VehicleSize) String() string {
	return string(s)
}

// ParseVehicleSize converts a string to a VehicleSize
func ParseVehicleSize(s string) (VehicleSize, error) {
	size := VehicleSize(s)
	if !size.IsValid() {
		return "", fmt.Errorf("invalid vehicle size: %s", s)
	}
	return size, nil
}
