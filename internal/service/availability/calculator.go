package availability

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
)

// Calculate строит упорядоченный список кандидатов (ресурс, окно) на заданный день.
//
// Для каждого ресурса берётся его расписание (или глобальное, если своего нет),
// из рабочих часов вычитаются перерывы и дни недоступности, далее исключаются
// окна, конфликтующие с активными бронированиями с учётом буфера.
// Результат детерминирован: сортировка по началу окна, затем по id ресурса.
func Calculate(
	params Params,
	resources []domain.Resource,
	schedules map[int64]*domain.ScheduleConfig,
	bookings []*domain.Booking,
) []Candidate {
	if params.DurationMinutes <= 0 || params.GranularityMinutes <= 0 {
		return nil
	}

	byResource := make(map[int64][]*domain.Booking, len(resources))
	for _, b := range bookings {
		if params.ExcludeBookingID != nil && b.ID == *params.ExcludeBookingID {
			continue
		}
		if b.ResourceID == nil || !b.IsActive() {
			continue
		}
		byResource[*b.ResourceID] = append(byResource[*b.ResourceID], b)
	}

	earliestStart := params.Now.Add(time.Duration(params.MinLeadTimeMinutes) * time.Minute)
	buffer := time.Duration(params.BufferMinutes) * time.Minute

	var candidates []Candidate
	for _, res := range resources {
		if !res.IsActive() {
			continue
		}
		cfg, ok := schedules[res.ResourceID()]
		if !ok || cfg == nil {
			continue
		}
		if cfg.IsBlackout(params.Date) {
			continue
		}

		day := cfg.Week.ForDay(params.Date.Weekday())
		if !day.IsOpen {
			continue
		}

		openAt, err := day.OpenTime.At(params.Date)
		if err != nil {
			continue
		}
		closeAt, err := day.CloseTime.At(params.Date)
		if err != nil {
			continue
		}

		for start := openAt; !start.After(closeAt); start = start.Add(time.Duration(params.GranularityMinutes) * time.Minute) {
			window := domain.TimeWindow{Start: start, DurationMinutes: params.DurationMinutes}
			if window.End().After(closeAt) {
				break
			}
			if start.Before(earliestStart) {
				continue
			}
			if overlapsBreak(window, cfg.Breaks, params.Date) {
				continue
			}
			if conflictsWithBookings(window, byResource[res.ResourceID()], buffer) {
				continue
			}
			candidates = append(candidates, Candidate{Resource: res, Window: window})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].Window.Start.Equal(candidates[j].Window.Start) {
			return candidates[i].Window.Start.Before(candidates[j].Window.Start)
		}
		return candidates[i].Resource.ResourceID() < candidates[j].Resource.ResourceID()
	})

	return candidates
}

// FilterByStart оставляет только кандидатов, начинающихся ровно в заданный момент
func FilterByStart(candidates []Candidate, start time.Time) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		if c.Window.Start.Equal(start) {
			out = append(out, c)
		}
	}
	return out
}

// GroupSlots сворачивает кандидатов в слоты вида (начало, доступные ресурсы)
func GroupSlots(candidates []Candidate) []Slot {
	var slots []Slot
	index := make(map[time.Time]int)
	for _, c := range candidates {
		i, ok := index[c.Window.Start]
		if !ok {
			i = len(slots)
			index[c.Window.Start] = i
			slots = append(slots, Slot{Start: c.Window.Start, DurationMinutes: c.Window.DurationMinutes})
		}
		slots[i].ResourceIDs = append(slots[i].ResourceIDs, c.Resource.ResourceID())
	}
	return slots
}

func overlapsBreak(window domain.TimeWindow, breaks []domain.BreakWindow, date time.Time) bool {
	for _, br := range breaks {
		start, err1 := br.Start.At(date)
		end, err2 := br.End.At(date)
		if err1 != nil || err2 != nil {
			continue
		}
		if window.Start.Before(end) && start.Before(window.End()) {
			return true
		}
	}
	return false
}

func conflictsWithBookings(window domain.TimeWindow, bookings []*domain.Booking, buffer time.Duration) bool {
	for _, b := range bookings {
		if window.ConflictsWithBuffer(b.Window(), buffer) {
			return true
		}
	}
	return false
}
