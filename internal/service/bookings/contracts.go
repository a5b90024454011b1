package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-WashService/internal/integrations/payservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByCustomer(ctx context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetActiveByResources(ctx context.Context, resourceIDs []int64, from, to time.Time) ([]*domain.Booking, error)
	Confirm(ctx context.Context, id int64, actor int64, at time.Time) error
	Start(ctx context.Context, id int64, actor int64, at time.Time) error
	Complete(ctx context.Context, id int64, endAt time.Time) error
	Cancel(ctx context.Context, id int64, actor int64, reason string, at time.Time) error
	MarkNoShow(ctx context.Context, id int64, actor int64, reason *string, at time.Time) error
	SetRating(ctx context.Context, id int64, rating int, feedback *string) error
	ReplaceLineItems(ctx context.Context, id int64, items []domain.ServiceLineItem, durationMinutes int, estimatedPrice float64) error
}

// FeeRepository интерфейс журнала начислений
type FeeRepository interface {
	Insert(ctx context.Context, entry *domain.FeeLedgerEntry) (*domain.FeeLedgerEntry, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]*domain.FeeLedgerEntry, error)
}

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.WashService, error)
}

// PricingCalculator расчёты стоимости и штрафов
type PricingCalculator interface {
	Quote(items []domain.ServiceLineItem) float64
	OvertimeFee(estimatedMinutes, actualMinutes int) float64
	CancellationFee(quote float64, scheduledAt, now time.Time) float64
	NoShowFee(quote float64) float64
}

// NotificationClient интерфейс клиента NotificationService
type NotificationClient interface {
	Notify(ctx context.Context, notification notifyservice.Notification) error
}

// PaymentClient интерфейс клиента PaymentService
type PaymentClient interface {
	Charge(ctx context.Context, req payservice.ChargeRequest) (*payservice.ChargeResponse, error)
}

// EventPublisher публикация доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, name string, bookingID int64, payload any) error
}

// AvailabilityCache инвалидация кеша доступности по дате
type AvailabilityCache interface {
	Invalidate(scopeKey string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider источник текущего времени
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider системные часы
type RealTimeProvider struct{}

// Now возвращает текущее время
func (RealTimeProvider) Now() time.Time { return time.Now() }

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}
