package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	if len(req.ServiceIDs) < domain.MinLineItems {
		return fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}
	if len(req.ServiceIDs) > domain.MaxLineItems {
		return fmt.Errorf("%w: at most %d services allowed", ErrInvalidInput, domain.MaxLineItems)
	}
	for _, id := range req.ServiceIDs {
		if id <= 0 {
			return fmt.Errorf("%w: service IDs must be positive", ErrInvalidInput)
		}
	}

	if req.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduledAt is required", ErrInvalidInput)
	}

	if req.ResourceType != nil {
		switch domain.ResourceType(*req.ResourceType) {
		case domain.ResourceFixedBay, domain.ResourceMobileCrew:
		default:
			return fmt.Errorf("%w: unknown resource type %q", ErrInvalidInput, *req.ResourceType)
		}
	}

	// Координаты подачи задаются только парой
	if (req.PickupLat == nil) != (req.PickupLng == nil) {
		return fmt.Errorf("%w: pickup coordinates must be set together", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes too long", ErrInvalidInput)
	}

	return nil
}

// validateSchedulingWindow проверяет минимальное время до начала и горизонт бронирования
func validateSchedulingWindow(scheduledAt, now time.Time, minLeadMinutes, horizonDays int) error {
	if scheduledAt.Before(now.Add(time.Duration(minLeadMinutes) * time.Minute)) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, minLeadMinutes)
	}

	if horizonDays > 0 && scheduledAt.After(now.AddDate(0, 0, horizonDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, horizonDays)
	}

	return nil
}

// buildLineItems собирает позиции заказа, агрегируя повторы услуг в количество
func buildLineItems(serviceIDs []int64, services []*domain.WashService) []domain.ServiceLineItem {
	quantities := make(map[int64]int, len(serviceIDs))
	var order []int64
	for _, id := range serviceIDs {
		if _, seen := quantities[id]; !seen {
			order = append(order, id)
		}
		quantities[id]++
	}

	byID := make(map[int64]*domain.WashService, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	items := make([]domain.ServiceLineItem, 0, len(order))
	for _, id := range order {
		svc, ok := byID[id]
		if !ok {
			continue
		}
		items = append(items, domain.ServiceLineItem{
			ServiceID:           svc.ID,
			Name:                svc.Name,
			UnitPrice:           svc.Price,
			UnitDurationMinutes: svc.DurationMinutes,
			Quantity:            quantities[id],
		})
	}
	return items
}

// uniqueServiceIDs возвращает ID услуг без повторов, сохраняя порядок
func uniqueServiceIDs(serviceIDs []int64) []int64 {
	seen := make(map[int64]struct{}, len(serviceIDs))
	var out []int64
	for _, id := range serviceIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// dayBounds возвращает границы календарного дня указанного момента
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
