package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/internal/infra/events"
	catalogRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/schedule"
	customerClient "github.com/m04kA/SMC-WashService/internal/integrations/customerservice"
	"github.com/m04kA/SMC-WashService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-WashService/internal/service/allocator"
	"github.com/m04kA/SMC-WashService/internal/service/availability"
	"github.com/m04kA/SMC-WashService/internal/service/reservation"
)

// UseCase use case для создания бронирования.
//
// Создание проходит весь конвейер планирования: расчёт доступности на дату,
// отбор совместимых ресурсов, резервирование слота под блокировкой и фиксация
// бронирования в статусе PENDING.
type UseCase struct {
	bookingRepo  BookingRepository
	resourceRepo ResourceRepository
	scheduleRepo ScheduleRepository
	catalogRepo  CatalogRepository
	customer     CustomerServiceClient
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
	bookingRepo BookingRepository,
	resourceRepo ResourceRepository,
	scheduleRepo ScheduleRepository,
	catalogRepo CatalogRepository,
	customer CustomerServiceClient,
	reserver Reserver,
	eventsPub EventPublisher,
	notifier NotificationClient,
	cache AvailabilityCache,
	cfg Config,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		resourceRepo: resourceRepo,
		scheduleRepo: scheduleRepo,
		catalogRepo:  catalogRepo,
		customer:     customer,
		reserver:     reserver,
		eventsPub:    eventsPub,
		notifier:     notifier,
		cache:        cache,
		timeProvider: &RealTimeProvider{},
		cfg:          cfg,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, services=%v, scheduled_at=%s",
		req.CustomerID, req.ServiceIDs, req.ScheduledAt.Format(domain.TimeFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Проверяем минимальное время до начала и горизонт бронирования
	if err := validateSchedulingWindow(req.ScheduledAt, now, uc.cfg.MinLeadTimeMinutes, uc.cfg.HorizonDays); err != nil {
		uc.logger.Warn("CreateBooking: scheduling window validation failed: %v", err)
		return nil, err
	}

	// 4. Получаем выбранный автомобиль клиента
	vehicle, err := uc.customer.GetSelectedVehicle(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customerClient.ErrVehicleNotFound) {
			uc.logger.Warn("CreateBooking: customer id=%d has no selected vehicle", req.CustomerID)
			return nil, ErrVehicleNotFound
		}
		uc.logger.Error("CreateBooking: failed to get selected vehicle for customer id=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: failed to get selected vehicle: %v", ErrInternal, err)
	}

	vehicleSize, err := domain.ParseVehicleSize(vehicle.Size)
	if err != nil {
		uc.logger.Error("CreateBooking: customer id=%d has vehicle with unknown size %q", req.CustomerID, vehicle.Size)
		return nil, fmt.Errorf("%w: unknown vehicle size: %v", ErrInternal, err)
	}

	// 5. Получаем услуги каталога и собираем позиции заказа
	services, err := uc.catalogRepo.GetByIDs(ctx, uniqueServiceIDs(req.ServiceIDs))
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: some of services %v not found", req.ServiceIDs)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get services: %v", err)
		return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}

	// 6. Формируем черновик бронирования, клампим длительность и цену
	booking := &domain.Booking{
		CustomerID:       req.CustomerID,
		Items:            buildLineItems(req.ServiceIDs, services),
		ScheduledAt:      req.ScheduledAt,
		Status:           domain.StatusPending,
		VehicleSize:      vehicleSize,
		VehiclePlate:     &vehicle.LicensePlate,
		PickupLat:        req.PickupLat,
		PickupLng:        req.PickupLng,
		Notes:            req.Notes,
		PaymentReference: vehicle.PaymentReference,
		CreatedBy:        req.CustomerID,
	}
	booking.RecalculateTotals()

	// 7. Получаем активные ресурсы с учётом фильтра по типу
	var typeFilter *domain.ResourceType
	if req.ResourceType != nil {
		t := domain.ResourceType(*req.ResourceType)
		typeFilter = &t
	}

	resources, err := uc.resourceRepo.ListActive(ctx, typeFilter)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to list resources: %v", err)
		return nil, fmt.Errorf("%w: failed to list resources: %v", ErrInternal, err)
	}
	if len(resources) == 0 {
		uc.logger.Warn("CreateBooking: no active resources")
		return nil, ErrResourceUnavailable
	}

	// 8. Загружаем расписания ресурсов (с фолбэком на глобальное)
	schedules, err := uc.loadSchedules(ctx, resources)
	if err != nil {
		return nil, err
	}

	// 9. Загружаем активные бронирования на дату (с запасом на буфер)
	dayStart, dayEnd := dayBounds(req.ScheduledAt)
	resourceIDs := make([]int64, 0, len(resources))
	for _, r := range resources {
		resourceIDs = append(resourceIDs, r.ResourceID())
	}

	existing, err := uc.bookingRepo.GetActiveByResources(ctx, resourceIDs, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get active bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get active bookings: %v", ErrInternal, err)
	}

	// 10. Рассчитываем доступность и оставляем кандидатов на запрошенное время
	candidates := availability.Calculate(availability.Params{
		Date:               req.ScheduledAt,
		DurationMinutes:    booking.DurationMinutes,
		Now:                now,
		GranularityMinutes: uc.cfg.SlotGranularityMinutes,
		BufferMinutes:      uc.cfg.BufferMinutes,
		MinLeadTimeMinutes: uc.cfg.MinLeadTimeMinutes,
	}, resources, schedules, existing)

	candidates = availability.FilterByStart(candidates, req.ScheduledAt)
	if len(candidates) == 0 {
		uc.logger.Warn("CreateBooking: no slot at %s", req.ScheduledAt.Format(domain.TimeFormat))
		return nil, ErrResourceUnavailable
	}

	// 11. Отбираем ресурсы, способные обслужить автомобиль и точку подачи
	dailyCounts, err := uc.loadDailyCounts(ctx, candidates, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	compatible := allocator.FilterCompatible(candidates, booking.Requirements(), dailyCounts)
	if len(compatible) == 0 {
		uc.logger.Warn("CreateBooking: no compatible resource for customer=%d, size=%s", req.CustomerID, vehicleSize)
		return nil, ErrResourceUnavailable
	}

	// 12. Резервируем слот и фиксируем бронирование
	var result *domain.Booking
	_, err = uc.reserver.Reserve(ctx, compatible, nil, func(txCtx context.Context, cand availability.Candidate) error {
		resourceID := cand.Resource.ResourceID()
		booking.ResourceID = &resourceID

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}
		result = created
		return nil
	})
	if err != nil {
		if errors.Is(err, reservation.ErrResourceUnavailable) {
			uc.logger.Warn("CreateBooking: all candidates taken for customer=%d at %s", req.CustomerID, req.ScheduledAt.Format(domain.TimeFormat))
			return nil, ErrResourceUnavailable
		}
		uc.logger.Error("CreateBooking: reservation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d on resource=%d", result.ID, *result.ResourceID)

	// 13. Побочные эффекты после фиксации: событие, уведомление, кеш
	uc.afterCreate(ctx, result)

	return toResponse(result), nil
}

// loadSchedules собирает расписание каждого ресурса; ресурс без расписания не бронируется
func (uc *UseCase) loadSchedules(ctx context.Context, resources []domain.Resource) (map[int64]*domain.ScheduleConfig, error) {
	schedules := make(map[int64]*domain.ScheduleConfig, len(resources))
	for _, r := range resources {
		id := r.ResourceID()
		cfg, err := uc.scheduleRepo.GetConfig(ctx, &id)
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
				uc.logger.Warn("CreateBooking: resource id=%d has no schedule, skipping", id)
				continue
			}
			uc.logger.Error("CreateBooking: failed to get schedule for resource id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
		}
		schedules[id] = cfg
	}
	return schedules, nil
}

// loadDailyCounts считает активные бронирования мобильных бригад на дату
// для проверки дневного лимита
func (uc *UseCase) loadDailyCounts(ctx context.Context, candidates []availability.Candidate, dayStart, dayEnd time.Time) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, cand := range candidates {
		crew, ok := cand.Resource.(*domain.MobileCrew)
		if !ok || crew.MaxBookingsPerDay <= 0 {
			continue
		}
		if _, done := counts[crew.ID]; done {
			continue
		}

		n, err := uc.bookingRepo.CountActiveOnDate(ctx, crew.ID, dayStart, dayEnd)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to count bookings for resource id=%d: %v", crew.ID, err)
			return nil, fmt.Errorf("%w: failed to count bookings: %v", ErrInternal, err)
		}
		counts[crew.ID] = n
	}
	return counts, nil
}

func (uc *UseCase) afterCreate(ctx context.Context, b *domain.Booking) {
	if err := uc.eventsPub.Publish(ctx, events.EventBookingCreated, b.ID, map[string]any{
		"customer_id":  b.CustomerID,
		"scheduled_at": b.ScheduledAt,
		"status":       b.Status.String(),
	}); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%d: %v", b.ID, err)
	}

	if err := uc.notifier.Notify(ctx, notifyservice.Notification{
		BookingID:   b.ID,
		Kind:        notifyservice.KindBookingCreated,
		RecipientID: b.CustomerID,
	}); err != nil {
		uc.logger.Warn("CreateBooking: failed to notify customer=%d for booking id=%d: %v", b.CustomerID, b.ID, err)
	}

	uc.cache.Invalidate(b.ScheduledAt.Format(domain.DateFormat))
}

func toResponse(b *domain.Booking) *Response {
	items := make([]LineItem, 0, len(b.Items))
	for _, item := range b.Items {
		items = append(items, LineItem{
			ID:              item.ID,
			ServiceID:       item.ServiceID,
			Name:            item.Name,
			UnitPrice:       item.UnitPrice,
			DurationMinutes: item.UnitDurationMinutes,
			Quantity:        item.Quantity,
		})
	}

	return &Response{
		ID:              b.ID,
		CustomerID:      b.CustomerID,
		Status:          b.Status.String(),
		ScheduledAt:     b.ScheduledAt,
		DurationMinutes: b.DurationMinutes,
		EstimatedPrice:  b.EstimatedPrice,
		Items:           items,
		VehicleSize:     string(b.VehicleSize),
		VehiclePlate:    b.VehiclePlate,
		PickupLat:       b.PickupLat,
		PickupLng:       b.PickupLng,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
