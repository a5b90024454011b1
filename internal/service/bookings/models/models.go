package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ConfirmBookingRequest запрос на подтверждение бронирования
type ConfirmBookingRequest struct {
	ActorID int64 `json:"actorId"`
}

// StartBookingRequest запрос на начало обслуживания
type StartBookingRequest struct {
	ActorID int64 `json:"actorId"`
}

// CompleteBookingRequest запрос на завершение обслуживания
type CompleteBookingRequest struct {
	ActorID int64 `json:"actorId"`
	// ActualEndAt фактическое время завершения; по умолчанию текущее время
	ActualEndAt *time.Time `json:"actualEndAt,omitempty"`
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	ActorID            int64  `json:"actorId"`
	CancellationReason string `json:"cancellationReason"`
}

// MarkNoShowRequest запрос на фиксацию неявки клиента
type MarkNoShowRequest struct {
	ActorID int64   `json:"actorId"`
	Reason  *string `json:"reason,omitempty"`
}

// RateBookingRequest запрос на оценку выполненного заказа
type RateBookingRequest struct {
	ActorID  int64   `json:"actorId"`
	Rating   int     `json:"rating"`
	Feedback *string `json:"feedback,omitempty"`
}

// AddServicesRequest запрос на добавление услуг в заказ
type AddServicesRequest struct {
	ActorID    int64   `json:"actorId"`
	ServiceIDs []int64 `json:"serviceIds"`
}

// RemoveServiceRequest запрос на удаление позиции из заказа
type RemoveServiceRequest struct {
	ActorID    int64 `json:"actorId"`
	LineItemID int64 `json:"lineItemId"`
}

// GetCustomerBookingsRequest запрос на получение бронирований клиента
type GetCustomerBookingsRequest struct {
	CustomerID int64   `json:"customerId"`
	Status     *string `json:"status,omitempty"`
}

// Response модели

// LineItemResponse позиция заказа
type LineItemResponse struct {
	ID              int64   `json:"id"`
	ServiceID       int64   `json:"serviceId"`
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"unitPrice"`
	DurationMinutes int     `json:"durationMinutes"`
	Quantity        int     `json:"quantity"`
	TotalPrice      float64 `json:"totalPrice"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customerId"`
	Status     string `json:"status"`

	// ResourceID назначенный ресурс; присутствует только после подтверждения
	ResourceID *int64 `json:"resourceId,omitempty"`

	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
	EstimatedPrice  float64   `json:"estimatedPrice"`

	Items []LineItemResponse `json:"items"`

	ActualStartAt *time.Time `json:"actualStartAt,omitempty"`
	ActualEndAt   *time.Time `json:"actualEndAt,omitempty"`

	Rating   *int    `json:"rating,omitempty"`
	Feedback *string `json:"feedback,omitempty"`

	VehicleSize  string   `json:"vehicleSize"`
	VehiclePlate *string  `json:"vehiclePlate,omitempty"`
	PickupLat    *float64 `json:"pickupLat,omitempty"`
	PickupLng    *float64 `json:"pickupLng,omitempty"`
	Notes        *string  `json:"notes,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// FeeResponse начисление по бронированию
type FeeResponse struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"bookingId"`
	Kind      string    `json:"kind"`
	Amount    float64   `json:"amount"`
	ChargedAt time.Time `json:"chargedAt"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	items := make([]LineItemResponse, 0, len(b.Items))
	for _, item := range b.Items {
		items = append(items, LineItemResponse{
			ID:              item.ID,
			ServiceID:       item.ServiceID,
			Name:            item.Name,
			UnitPrice:       item.UnitPrice,
			DurationMinutes: item.UnitDurationMinutes,
			Quantity:        item.Quantity,
			TotalPrice:      item.TotalPrice(),
		})
	}

	return &BookingResponse{
		ID:                 b.ID,
		CustomerID:         b.CustomerID,
		Status:             b.Status.String(),
		ResourceID:         b.AssignedResourceID(),
		ScheduledAt:        b.ScheduledAt,
		DurationMinutes:    b.DurationMinutes,
		EstimatedPrice:     b.EstimatedPrice,
		Items:              items,
		ActualStartAt:      b.ActualStartAt,
		ActualEndAt:        b.ActualEndAt,
		Rating:             b.Rating,
		Feedback:           b.Feedback,
		VehicleSize:        string(b.VehicleSize),
		VehiclePlate:       b.VehiclePlate,
		PickupLat:          b.PickupLat,
		PickupLng:          b.PickupLng,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}
	return resp
}

// FromDomainFee конвертирует начисление в DTO
func FromDomainFee(f *domain.FeeLedgerEntry) *FeeResponse {
	if f == nil {
		return nil
	}
	return &FeeResponse{
		ID:        f.ID,
		BookingID: f.BookingID,
		Kind:      string(f.Kind),
		Amount:    f.Amount,
		ChargedAt: f.ChargedAt,
	}
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	status, err := domain.ParseBookingStatus(s)
	if err != nil {
		return "", ErrInvalidStatus
	}
	return status, nil
}
