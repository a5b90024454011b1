package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetActiveByResources(ctx context.Context, resourceIDs []int64, from, to time.Time) ([]*domain.Booking, error)
	CountActiveOnDate(ctx context.Context, resourceID int64, dayStart, dayEnd time.Time) (int, error)
}

// ResourceRepository интерфейс реестра ресурсов
type ResourceRepository interface {
	ListActive(ctx context.Context, resourceType *domain.ResourceType) ([]domain.Resource, error)
}

// ScheduleRepository интерфейс конфигурации расписаний
type ScheduleRepository interface {
	GetConfig(ctx context.Context, resourceID *int64) (*domain.ScheduleConfig, error)
}

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.WashService, error)
}

// SlotsCache кеш рассчитанной доступности
type SlotsCache interface {
	Get(scopeKey, key string) (any, bool)
	Set(scopeKey, key string, value any)
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
