package reschedule_booking

import (
	"time"

	usecase "github.com/m04kA/SMC-WashService/internal/usecase/reschedule_booking"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewScheduledAt string `json:"newScheduledAt"` // RFC 3339, например "2026-09-15T10:00:00Z"
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64   `json:"id"`
	CustomerID      int64   `json:"customerId"`
	Status          string  `json:"status"`
	ScheduledAt     string  `json:"scheduledAt"`
	DurationMinutes int     `json:"durationMinutes"`
	EstimatedPrice  float64 `json:"estimatedPrice"`
	ResourceID      *int64  `json:"resourceId,omitempty"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(bookingID, actorID int64) (*usecase.Request, error) {
	newScheduledAt, err := time.Parse(time.RFC3339, r.NewScheduledAt)
	if err != nil {
		return nil, err
	}

	return &usecase.Request{
		BookingID:      bookingID,
		ActorID:        actorID,
		NewScheduledAt: newScheduledAt,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *usecase.Response) *BookingResponse {
	return &BookingResponse{
		ID:              resp.ID,
		CustomerID:      resp.CustomerID,
		Status:          resp.Status,
		ScheduledAt:     resp.ScheduledAt.Format(time.RFC3339),
		DurationMinutes: resp.DurationMinutes,
		EstimatedPrice:  resp.EstimatedPrice,
		ResourceID:      resp.ResourceID,
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
