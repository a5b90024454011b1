package reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/internal/service/availability"
)

// LockStore хранилище slot-блокировок с атомарным захватом и TTL
type LockStore interface {
	Acquire(ctx context.Context, resourceID int64, windowKey, holderToken string, ttl time.Duration) error
	Release(ctx context.Context, resourceID int64, windowKey, holderToken string) error
}

// BookingRepository доступ к активным бронированиям для повторной проверки под блокировкой
type BookingRepository interface {
	GetActiveByResources(ctx context.Context, resourceIDs []int64, from, to time.Time) ([]*domain.Booking, error)
}

// TransactionManager управление транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// CommitFunc фиксирует бронирование для выбранного кандидата.
// Вызывается внутри Serializable-транзакции после повторной проверки конфликтов.
type CommitFunc = func(ctx context.Context, cand availability.Candidate) error
