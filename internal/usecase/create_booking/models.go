package create_booking

import (
	"time"
)

// Config параметры планирования бронирований
type Config struct {
	MinLeadTimeMinutes     int
	HorizonDays            int
	SlotGranularityMinutes int
	BufferMinutes          int
}

// Request модель запроса на создание бронирования
type Request struct {
	CustomerID  int64     // ID клиента
	ServiceIDs  []int64   // Услуги заказа; повтор ID увеличивает количество
	ScheduledAt time.Time // Запрошенное время начала
	// ResourceType опциональный фильтр: fixed_bay или mobile_crew
	ResourceType *string
	// PickupLat, PickupLng точка подачи для выездного мытья
	PickupLat *float64
	PickupLng *float64
	Notes     *string
}

// LineItem позиция созданного заказа
type LineItem struct {
	ID              int64
	ServiceID       int64
	Name            string
	UnitPrice       float64
	DurationMinutes int
	Quantity        int
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64
	CustomerID      int64
	Status          string
	ScheduledAt     time.Time
	DurationMinutes int
	EstimatedPrice  float64
	Items           []LineItem

	VehicleSize  string
	VehiclePlate *string
	PickupLat    *float64
	PickupLng    *float64
	Notes        *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
