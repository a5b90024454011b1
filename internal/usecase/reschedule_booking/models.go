package reschedule_booking

import "time"

// Config параметры планирования бронирований
type Config struct {
	MinLeadTimeMinutes     int
	HorizonDays            int
	SlotGranularityMinutes int
	BufferMinutes          int
}

// Request модель запроса на перенос бронирования
type Request struct {
	BookingID int64
	ActorID   int64
	// NewScheduledAt новое время начала
	NewScheduledAt time.Time
}

// Response модель ответа с перенесённым бронированием
type Response struct {
	ID              int64
	CustomerID      int64
	Status          string
	ScheduledAt     time.Time
	DurationMinutes int
	EstimatedPrice  float64
	// ResourceID назначенный ресурс; присутствует только после подтверждения
	ResourceID *int64
	UpdatedAt  time.Time
}
