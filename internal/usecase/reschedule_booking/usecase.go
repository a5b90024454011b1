package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/booking"
	scheduleRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-WashService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-WashService/internal/service/allocator"
	"github.com/m04kA/SMC-WashService/internal/service/availability"
	"github.com/m04kA/SMC-WashService/internal/service/reservation"
)

// UseCase use case для переноса бронирования на другое время.
//
// Перенос проходит тот же конвейер, что и создание: доступность, отбор
// совместимых ресурсов, резервирование нового окна под блокировкой. Старое
// окно освобождается тем же атомарным обновлением, которым занимается новое:
// до фиксации бронирование занимает старый слот, после - только новый.
type UseCase struct {
	bookingRepo  BookingRepository
	resourceRepo ResourceRepository
	scheduleRepo ScheduleRepository
	reserver     Reserver
	eventsPub    EventPublisher
	notifier     NotificationClient
	cache        AvailabilityCache
	timeProvider TimeProvider
	cfg          Config
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepository BookingRepository,
	resourceRepo ResourceRepository,
	scheduleRepository ScheduleRepository,
	reserver Reserver,
	eventsPub EventPublisher,
	notifier NotificationClient,
	cache AvailabilityCache,
	cfg Config,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepository,
		resourceRepo: resourceRepo,
		scheduleRepo: scheduleRepository,
		reserver:     reserver,
		eventsPub:    eventsPub,
		notifier:     notifier,
		cache:        cache,
		timeProvider: &RealTimeProvider{},
		cfg:          cfg,
		logger:       logger,
	}
}

// Execute выполняет use case переноса бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, actor=%d, new_time=%s",
		req.BookingID, req.ActorID, req.NewScheduledAt.Format(domain.TimeFormat))

	// 1. Валидация входных данных
	if req.BookingID <= 0 || req.ActorID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and actorID must be positive", ErrInvalidInput)
	}
	if req.NewScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: newScheduledAt is required", ErrInvalidInput)
	}

	// 2. Получаем текущее время и проверяем окно планирования
	now := uc.timeProvider.Now()
	if req.NewScheduledAt.Before(now.Add(time.Duration(uc.cfg.MinLeadTimeMinutes) * time.Minute)) {
		return nil, fmt.Errorf("%w: must reschedule at least %d minutes in advance", ErrTooLateToBook, uc.cfg.MinLeadTimeMinutes)
	}
	if uc.cfg.HorizonDays > 0 && req.NewScheduledAt.After(now.AddDate(0, 0, uc.cfg.HorizonDays)) {
		return nil, fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, uc.cfg.HorizonDays)
	}

	// 3. Получаем бронирование и проверяем владельца и статус
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: repository error for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}

	if booking.CustomerID != req.ActorID {
		uc.logger.Warn("RescheduleBooking: access denied for user=%d to booking id=%d", req.ActorID, req.BookingID)
		return nil, ErrAccessDenied
	}

	if err := booking.EnsureStatus("reschedule", domain.StatusPending, domain.StatusConfirmed); err != nil {
		uc.logger.Warn("RescheduleBooking: booking id=%d in status %s cannot be rescheduled", req.BookingID, booking.Status)
		return nil, err
	}

	oldScheduledAt := booking.ScheduledAt

	// 4. Получаем активные ресурсы и их расписания
	resources, err := uc.resourceRepo.ListActive(ctx, nil)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to list resources: %v", err)
		return nil, fmt.Errorf("%w: failed to list resources: %v", ErrInternal, err)
	}

	schedules := make(map[int64]*domain.ScheduleConfig, len(resources))
	resourceIDs := make([]int64, 0, len(resources))
	for _, r := range resources {
		id := r.ResourceID()
		resourceIDs = append(resourceIDs, id)

		cfg, err := uc.scheduleRepo.GetConfig(ctx, &id)
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
				continue
			}
			uc.logger.Error("RescheduleBooking: failed to get schedule for resource id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
		}
		schedules[id] = cfg
	}

	// 5. Загружаем активные бронирования на новую дату
	dayStart := time.Date(req.NewScheduledAt.Year(), req.NewScheduledAt.Month(), req.NewScheduledAt.Day(), 0, 0, 0, 0, req.NewScheduledAt.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	existing, err := uc.bookingRepo.GetActiveByResources(ctx, resourceIDs, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to get active bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get active bookings: %v", ErrInternal, err)
	}

	// 6. Рассчитываем доступность, исключая само бронирование из конфликтов
	candidates := availability.Calculate(availability.Params{
		Date:               req.NewScheduledAt,
		DurationMinutes:    booking.DurationMinutes,
		Now:                now,
		GranularityMinutes: uc.cfg.SlotGranularityMinutes,
		BufferMinutes:      uc.cfg.BufferMinutes,
		MinLeadTimeMinutes: uc.cfg.MinLeadTimeMinutes,
		ExcludeBookingID:   &booking.ID,
	}, resources, schedules, existing)

	candidates = availability.FilterByStart(candidates, req.NewScheduledAt)
	if len(candidates) == 0 {
		uc.logger.Warn("RescheduleBooking: no slot at %s for booking id=%d", req.NewScheduledAt.Format(domain.TimeFormat), req.BookingID)
		return nil, ErrResourceUnavailable
	}

	// 7. Отбираем совместимые ресурсы с учётом дневных лимитов бригад
	dailyCounts := make(map[int64]int)
	for _, cand := range candidates {
		crew, ok := cand.Resource.(*domain.MobileCrew)
		if !ok || crew.MaxBookingsPerDay <= 0 {
			continue
		}
		if _, done := dailyCounts[crew.ID]; done {
			continue
		}
		n, err := uc.bookingRepo.CountActiveOnDate(ctx, crew.ID, dayStart, dayEnd)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to count bookings for resource id=%d: %v", crew.ID, err)
			return nil, fmt.Errorf("%w: failed to count bookings: %v", ErrInternal, err)
		}
		dailyCounts[crew.ID] = n
	}

	compatible := allocator.FilterCompatible(candidates, booking.Requirements(), dailyCounts)
	if len(compatible) == 0 {
		uc.logger.Warn("RescheduleBooking: no compatible resource for booking id=%d", req.BookingID)
		return nil, ErrResourceUnavailable
	}

	// 8. Резервируем новое окно; бронирование перечитывается под блокировкой,
	// чтобы перенос не обогнал параллельную отмену или подтверждение
	var reservedResourceID int64
	_, err = uc.reserver.Reserve(ctx, compatible, &booking.ID, func(txCtx context.Context, cand availability.Candidate) error {
		current, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: repository error: %v", ErrInternal, err)
		}
		if err := current.EnsureStatus("reschedule", domain.StatusPending, domain.StatusConfirmed); err != nil {
			return err
		}

		reservedResourceID = cand.Resource.ResourceID()
		if err := uc.bookingRepo.UpdateSchedule(txCtx, req.BookingID, reservedResourceID, cand.Window.Start, current.DurationMinutes); err != nil {
			return fmt.Errorf("%w: failed to update schedule: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, reservation.ErrResourceUnavailable) {
			uc.logger.Warn("RescheduleBooking: all candidates taken for booking id=%d", req.BookingID)
			return nil, ErrResourceUnavailable
		}
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: booking id=%d moved to %s on resource=%d",
		req.BookingID, req.NewScheduledAt.Format(domain.TimeFormat), reservedResourceID)

	// 9. Обновляем снимок и выполняем побочные эффекты
	booking.ScheduledAt = req.NewScheduledAt
	booking.ResourceID = &reservedResourceID

	uc.afterReschedule(ctx, booking, oldScheduledAt)

	return &Response{
		ID:              booking.ID,
		CustomerID:      booking.CustomerID,
		Status:          booking.Status.String(),
		ScheduledAt:     booking.ScheduledAt,
		DurationMinutes: booking.DurationMinutes,
		EstimatedPrice:  booking.EstimatedPrice,
		ResourceID:      booking.AssignedResourceID(),
		UpdatedAt:       booking.UpdatedAt,
	}, nil
}

func (uc *UseCase) afterReschedule(ctx context.Context, b *domain.Booking, oldScheduledAt time.Time) {
	if err := uc.eventsPub.Publish(ctx, events.EventBookingRescheduled, b.ID, map[string]any{
		"customer_id":      b.CustomerID,
		"old_scheduled_at": oldScheduledAt,
		"new_scheduled_at": b.ScheduledAt,
	}); err != nil {
		uc.logger.Warn("RescheduleBooking: failed to publish event for booking id=%d: %v", b.ID, err)
	}

	if err := uc.notifier.Notify(ctx, notifyservice.Notification{
		BookingID:   b.ID,
		Kind:        notifyservice.KindBookingRescheduled,
		RecipientID: b.CustomerID,
	}); err != nil {
		uc.logger.Warn("RescheduleBooking: failed to notify customer=%d for booking id=%d: %v", b.CustomerID, b.ID, err)
	}

	// Инвалидируем обе даты: старое окно освободилось, новое занялось
	uc.cache.Invalidate(oldScheduledAt.Format(domain.DateFormat))
	uc.cache.Invalidate(b.ScheduledAt.Format(domain.DateFormat))
}
