package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-WashService/internal/service/availability"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetActiveByResources(ctx context.Context, resourceIDs []int64, from, to time.Time) ([]*domain.Booking, error)
	CountActiveOnDate(ctx context.Context, resourceID int64, dayStart, dayEnd time.Time) (int, error)
	UpdateSchedule(ctx context.Context, id int64, resourceID int64, scheduledAt time.Time, durationMinutes int) error
}

// ResourceRepository интерфейс реестра ресурсов
type ResourceRepository interface {
	ListActive(ctx context.Context, resourceType *domain.ResourceType) ([]domain.Resource, error)
}

// ScheduleRepository интерфейс конфигурации расписаний
type ScheduleRepository interface {
	GetConfig(ctx context.Context, resourceID *int64) (*domain.ScheduleConfig, error)
}

// Reserver конвейер резервирования слота
type Reserver interface {
	Reserve(ctx context.Context, candidates []availability.Candidate, excludeBookingID *int64, commit func(ctx context.Context, cand availability.Candidate) error) (*availability.Candidate, error)
}

// EventPublisher публикация доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, name string, bookingID int64, payload any) error
}

// NotificationClient отправка уведомлений
type NotificationClient interface {
	Notify(ctx context.Context, notification notifyservice.Notification) error
}

// AvailabilityCache инвалидация кеша доступности по дате
type AvailabilityCache interface {
	Invalidate(scopeKey string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
