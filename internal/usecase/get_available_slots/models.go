package get_available_slots

import "time"

// Config параметры планирования бронирований
type Config struct {
	MinLeadTimeMinutes     int
	HorizonDays            int
	SlotGranularityMinutes int
	BufferMinutes          int
}

// Request модель запроса доступных слотов
type Request struct {
	// Date день, на который запрашивается доступность
	Date time.Time
	// ServiceIDs услуги заказа; длительность окна считается по каталогу
	ServiceIDs []int64
	// DurationMinutes длительность окна напрямую; используется, когда
	// услуги не указаны
	DurationMinutes int
	// ResourceType опциональный фильтр: fixed_bay или mobile_crew
	ResourceType *string
	// VehicleSize опциональный фильтр по классу автомобиля
	VehicleSize *string
	// PickupLat, PickupLng точка подачи для выездного мытья
	PickupLat *float64
	PickupLng *float64
}

// Slot доступный слот с ресурсами, свободными на это время
type Slot struct {
	StartTime       time.Time `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	ResourceIDs     []int64   `json:"resourceIds"`
}

// Response модель ответа со списком слотов
type Response struct {
	Date            time.Time `json:"date"`
	DurationMinutes int       `json:"durationMinutes"`
	Slots           []Slot    `json:"slots"`
}
