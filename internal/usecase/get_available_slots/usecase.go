package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-WashService/internal/service/allocator"
	"github.com/m04kA/SMC-WashService/internal/service/availability"
)

// UseCase use case для получения доступных слотов на дату.
//
// Результат кешируется по дате; мутации бронирований на дату инвалидируют
// весь срез кеша этой даты.
type UseCase struct {
	bookingRepo  BookingRepository
	resourceRepo ResourceRepository
	scheduleRepo ScheduleRepository
	catalogRepo  CatalogRepository
	cache        SlotsCache
	timeProvider TimeProvider
	cfg          Config
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	resourceRepo ResourceRepository,
	scheduleRepository ScheduleRepository,
	catalogRepository CatalogRepository,
	cache SlotsCache,
	cfg Config,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		resourceRepo: resourceRepo,
		scheduleRepo: scheduleRepository,
		catalogRepo:  catalogRepository,
		cache:        cache,
		timeProvider: &RealTimeProvider{},
		cfg:          cfg,
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем горизонт бронирования
	now := uc.timeProvider.Now()
	if uc.cfg.HorizonDays > 0 && req.Date.After(now.AddDate(0, 0, uc.cfg.HorizonDays)) {
		return nil, fmt.Errorf("%w: can only view %d days ahead", ErrDateTooFarInFuture, uc.cfg.HorizonDays)
	}

	// 3. Определяем длительность окна
	duration, err := uc.resolveDuration(ctx, req)
	if err != nil {
		return nil, err
	}

	// 4. Пробуем кеш
	scopeKey := req.Date.Format(domain.DateFormat)
	cacheKey := uc.cacheKey(req, duration)
	if cached, ok := uc.cache.Get(scopeKey, cacheKey); ok {
		if resp, ok := cached.(*Response); ok {
			uc.logger.Info("GetAvailableSlots: cache hit for date=%s, duration=%d", scopeKey, duration)
			return resp, nil
		}
	}

	// 5. Получаем ресурсы, расписания и активные бронирования
	var typeFilter *domain.ResourceType
	if req.ResourceType != nil {
		t := domain.ResourceType(*req.ResourceType)
		typeFilter = &t
	}

	resources, err := uc.resourceRepo.ListActive(ctx, typeFilter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list resources: %v", err)
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
			uc.logger.Error("GetAvailableSlots: failed to get schedule for resource id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
		}
		schedules[id] = cfg
	}

	dayStart := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	bookings, err := uc.bookingRepo.GetActiveByResources(ctx, resourceIDs, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get active bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get active bookings: %v", ErrInternal, err)
	}

	// 6. Рассчитываем кандидатов
	candidates := availability.Calculate(availability.Params{
		Date:               req.Date,
		DurationMinutes:    duration,
		Now:                now,
		GranularityMinutes: uc.cfg.SlotGranularityMinutes,
		BufferMinutes:      uc.cfg.BufferMinutes,
		MinLeadTimeMinutes: uc.cfg.MinLeadTimeMinutes,
	}, resources, schedules, bookings)

	// 7. Применяем фильтры совместимости, если заданы
	if req.VehicleSize != nil || req.PickupLat != nil {
		candidates, err = uc.filterCompatible(ctx, req, candidates, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
	}

	// 8. Сворачиваем кандидатов в слоты и кешируем результат
	slots := availability.GroupSlots(candidates)
	resp := &Response{
		Date:            dayStart,
		DurationMinutes: duration,
		Slots:           make([]Slot, 0, len(slots)),
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, Slot{
			StartTime:       s.Start,
			DurationMinutes: s.DurationMinutes,
			ResourceIDs:     s.ResourceIDs,
		})
	}

	uc.cache.Set(scopeKey, cacheKey, resp)

	uc.logger.Info("GetAvailableSlots: %d slots for date=%s, duration=%d", len(resp.Slots), scopeKey, duration)
	return resp, nil
}

// resolveDuration вычисляет длительность окна из услуг или берёт её из запроса
func (uc *UseCase) resolveDuration(ctx context.Context, req *Request) (int, error) {
	if len(req.ServiceIDs) == 0 {
		return clampDuration(req.DurationMinutes), nil
	}

	services, err := uc.catalogRepo.GetByIDs(ctx, req.ServiceIDs)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: some of services %v not found", req.ServiceIDs)
			return 0, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get services: %v", err)
		return 0, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}

	total := 0
	for _, svc := range services {
		total += svc.DurationMinutes
	}
	return clampDuration(total), nil
}

// filterCompatible отбирает кандидатов, способных обслужить запрошенный
// автомобиль и точку подачи
func (uc *UseCase) filterCompatible(ctx context.Context, req *Request, candidates []availability.Candidate, dayStart, dayEnd time.Time) ([]availability.Candidate, error) {
	var size domain.VehicleSize
	if req.VehicleSize != nil {
		parsed, err := domain.ParseVehicleSize(*req.VehicleSize)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown vehicle size: %v", ErrInvalidInput, err)
		}
		size = parsed
	}

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
			uc.logger.Error("GetAvailableSlots: failed to count bookings for resource id=%d: %v", crew.ID, err)
			return nil, fmt.Errorf("%w: failed to count bookings: %v", ErrInternal, err)
		}
		dailyCounts[crew.ID] = n
	}

	return allocator.FilterCompatible(candidates, domain.ServiceRequirements{
		VehicleSize: size,
		PickupLat:   req.PickupLat,
		PickupLng:   req.PickupLng,
	}, dailyCounts), nil
}

func (uc *UseCase) cacheKey(req *Request, duration int) string {
	key := fmt.Sprintf("slots:%d", duration)
	if req.ResourceType != nil {
		key += ":" + *req.ResourceType
	}
	if req.VehicleSize != nil {
		key += ":" + *req.VehicleSize
	}
	if req.PickupLat != nil && req.PickupLng != nil {
		key += fmt.Sprintf(":%.4f,%.4f", *req.PickupLat, *req.PickupLng)
	}
	return key
}
