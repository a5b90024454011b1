package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WashService/internal/service/availability"
)

// Config параметры конвейера резервирования
type Config struct {
	// LockTTL срок жизни блокировки слота
	LockTTL time.Duration
	// LockRetries число повторов захвата блокировки одного кандидата
	LockRetries int
	// LockBackoff пауза между повторами захвата
	LockBackoff time.Duration
	// PipelineTimeout общий лимит времени на весь конвейер
	PipelineTimeout time.Duration
	// Buffer обязательный простой между бронированиями одного ресурса
	Buffer time.Duration
}

// Service конвейер резервирования слота: блокировка, повторная проверка, фиксация.
//
// Для каждого кандидата по порядку: захват блокировки (resource_id, window_key)
// с ограниченным числом повторов, затем в Serializable-транзакции повторная
// проверка конфликтов и фиксация через CommitFunc. Блокировка снимается на
// любом исходе. Если ни один кандидат не зафиксирован до истечения общего
// таймаута, возвращается ErrResourceUnavailable.
type Service struct {
	locks    LockStore
	bookings BookingRepository
	txm      TransactionManager
	cfg      Config
	logger   Logger
}

// NewService создаёт конвейер резервирования
func NewService(locks LockStore, bookings BookingRepository, txm TransactionManager, cfg Config, logger Logger) *Service {
	return &Service{
		locks:    locks,
		bookings: bookings,
		txm:      txm,
		cfg:      cfg,
		logger:   logger,
	}
}

// Reserve проходит по кандидатам и фиксирует первый свободный.
// excludeBookingID исключает бронирование из проверки конфликтов (перенос).
func (s *Service) Reserve(
	ctx context.Context,
	candidates []availability.Candidate,
	excludeBookingID *int64,
	commit CommitFunc,
) (*availability.Candidate, error) {
	if len(candidates) == 0 {
		return nil, ErrResourceUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PipelineTimeout)
	defer cancel()

	for i := range candidates {
		cand := candidates[i]
		if ctx.Err() != nil {
			s.logger.Warn("Reservation - pipeline timeout after %d candidates", i)
			return nil, ErrResourceUnavailable
		}

		committed, err := s.tryCandidate(ctx, cand, excludeBookingID, commit)
		if err != nil {
			return nil, err
		}
		if committed {
			return &cand, nil
		}
	}

	return nil, ErrResourceUnavailable
}

// tryCandidate пытается зафиксировать одного кандидата.
// Возврат (false, nil) означает "кандидат занят, пробуем следующего".
func (s *Service) tryCandidate(ctx context.Context, cand availability.Candidate, excludeBookingID *int64, commit CommitFunc) (bool, error) {
	resourceID := cand.Resource.ResourceID()
	windowKey := cand.Window.Key()
	holderToken := uuid.NewString()

	if !s.acquireWithRetry(ctx, resourceID, windowKey, holderToken) {
		return false, nil
	}
	defer s.release(ctx, resourceID, windowKey, holderToken)

	err := s.txm.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.revalidate(txCtx, cand, excludeBookingID); err != nil {
			return err
		}
		return commit(txCtx, cand)
	})
	if err != nil {
		if errors.Is(err, errSlotTaken) {
			s.logger.Debug("Reservation - resource %d window %s taken concurrently, trying next candidate", resourceID, windowKey)
			return false, nil
		}
		return false, fmt.Errorf("Reservation.tryCandidate - commit failed: %w", err)
	}

	return true, nil
}

func (s *Service) acquireWithRetry(ctx context.Context, resourceID int64, windowKey, holderToken string) bool {
	for attempt := 0; attempt <= s.cfg.LockRetries; attempt++ {
		err := s.locks.Acquire(ctx, resourceID, windowKey, holderToken, s.cfg.LockTTL)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		s.logger.Debug("Reservation - lock on resource %d window %s busy, attempt %d: %v", resourceID, windowKey, attempt+1, err)

		select {
		case <-time.After(s.cfg.LockBackoff):
		case <-ctx.Done():
			return false
		}
	}
	return false
}

// revalidate повторно проверяет конфликты окна под блокировкой.
// Диапазон выборки расширен на буфер в обе стороны, чтобы поймать соседние
// бронирования, нарушающие требуемый простой.
func (s *Service) revalidate(ctx context.Context, cand availability.Candidate, excludeBookingID *int64) error {
	from := cand.Window.Start.Add(-s.cfg.Buffer)
	to := cand.Window.End().Add(s.cfg.Buffer)

	existing, err := s.bookings.GetActiveByResources(ctx, []int64{cand.Resource.ResourceID()}, from, to)
	if err != nil {
		return fmt.Errorf("Reservation.revalidate - fetch active bookings: %w", err)
	}

	for _, b := range existing {
		if excludeBookingID != nil && b.ID == *excludeBookingID {
			continue
		}
		if cand.Window.ConflictsWithBuffer(b.Window(), s.cfg.Buffer) {
			return errSlotTaken
		}
	}
	return nil
}

// release снимает блокировку даже после истечения дедлайна конвейера
func (s *Service) release(ctx context.Context, resourceID int64, windowKey, holderToken string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.locks.Release(releaseCtx, resourceID, windowKey, holderToken); err != nil {
		s.logger.Warn("Reservation - failed to release lock on resource %d window %s: %v", resourceID, windowKey, err)
	}
}
