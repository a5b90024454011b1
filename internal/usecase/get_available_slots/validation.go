package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-WashService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if len(req.ServiceIDs) == 0 && req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: either serviceIds or durationMinutes is required", ErrInvalidInput)
	}
	if len(req.ServiceIDs) > domain.MaxLineItems {
		return fmt.Errorf("%w: at most %d services allowed", ErrInvalidInput, domain.MaxLineItems)
	}

	if req.ResourceType != nil {
		switch domain.ResourceType(*req.ResourceType) {
		case domain.ResourceFixedBay, domain.ResourceMobileCrew:
		default:
			return fmt.Errorf("%w: unknown resource type %q", ErrInvalidInput, *req.ResourceType)
		}
	}

	if req.VehicleSize != nil {
		if _, err := domain.ParseVehicleSize(*req.VehicleSize); err != nil {
			return fmt.Errorf("%w: unknown vehicle size %q", ErrInvalidInput, *req.VehicleSize)
		}
	}

	if (req.PickupLat == nil) != (req.PickupLng == nil) {
		return fmt.Errorf("%w: pickup coordinates must be set together", ErrInvalidInput)
	}

	return nil
}

// clampDuration приводит длительность окна к допустимым границам
func clampDuration(minutes int) int {
	if minutes < domain.MinBookingDurationMinutes {
		return domain.MinBookingDurationMinutes
	}
	if minutes > domain.MaxBookingDurationMinutes {
		return domain.MaxBookingDurationMinutes
	}
	return minutes
}
