package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-WashService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceIDs  []int64 `json:"serviceIds"`
	ScheduledAt string  `json:"scheduledAt"` // RFC 3339, например "2026-09-15T10:00:00Z"
	// ResourceType опциональный фильтр: fixed_bay или mobile_crew
	ResourceType *string  `json:"resourceType,omitempty"`
	PickupLat    *float64 `json:"pickupLat,omitempty"`
	PickupLng    *float64 `json:"pickupLng,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// LineItemResponse позиция заказа
type LineItemResponse struct {
	ID              int64   `json:"id"`
	ServiceID       int64   `json:"serviceId"`
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"unitPrice"`
	DurationMinutes int     `json:"durationMinutes"`
	Quantity        int     `json:"quantity"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64              `json:"id"`
	CustomerID      int64              `json:"customerId"`
	Status          string             `json:"status"`
	ScheduledAt     string             `json:"scheduledAt"`
	DurationMinutes int                `json:"durationMinutes"`
	EstimatedPrice  float64            `json:"estimatedPrice"`
	Items           []LineItemResponse `json:"items"`
	VehicleSize     string             `json:"vehicleSize"`
	VehiclePlate    *string            `json:"vehiclePlate,omitempty"`
	PickupLat       *float64           `json:"pickupLat,omitempty"`
	PickupLng       *float64           `json:"pickupLng,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
	CreatedAt       string             `json:"createdAt"`
	UpdatedAt       string             `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(customerID int64) (*createBooking.Request, error) {
	scheduledAt, err := time.Parse(time.RFC3339, r.ScheduledAt)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		CustomerID:   customerID,
		ServiceIDs:   r.ServiceIDs,
		ScheduledAt:  scheduledAt,
		ResourceType: r.ResourceType,
		PickupLat:    r.PickupLat,
		PickupLng:    r.PickupLng,
		Notes:        r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	items := make([]LineItemResponse, 0, len(resp.Items))
	for _, item := range resp.Items {
		items = append(items, LineItemResponse{
			ID:              item.ID,
			ServiceID:       item.ServiceID,
			Name:            item.Name,
			UnitPrice:       item.UnitPrice,
			DurationMinutes: item.DurationMinutes,
			Quantity:        item.Quantity,
		})
	}

	return &BookingResponse{
		ID:              resp.ID,
		CustomerID:      resp.CustomerID,
		Status:          resp.Status,
		ScheduledAt:     resp.ScheduledAt.Format(time.RFC3339),
		DurationMinutes: resp.DurationMinutes,
		EstimatedPrice:  resp.EstimatedPrice,
		Items:           items,
		VehicleSize:     resp.VehicleSize,
		VehiclePlate:    resp.VehiclePlate,
		PickupLat:       resp.PickupLat,
		PickupLng:       resp.PickupLng,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
