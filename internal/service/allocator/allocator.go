package allocator

import (
	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/internal/service/availability"
)

// FilterCompatible оставляет кандидатов, чьи ресурсы способны обслужить заявку.
//
// Для мобильных бригад дополнительно проверяется дневной лимит заказов:
// dailyCounts содержит число активных бронирований ресурса на дату слота.
// Порядок кандидатов не меняется, первый из списка - предпочтительный.
func FilterCompatible(
	candidates []availability.Candidate,
	req domain.ServiceRequirements,
	dailyCounts map[int64]int,
) []availability.Candidate {
	var out []availability.Candidate
	for _, c := range candidates {
		if !c.Resource.CanServe(req) {
			continue
		}
		if exceedsDailyCap(c.Resource, dailyCounts) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func exceedsDailyCap(res domain.Resource, dailyCounts map[int64]int) bool {
	crew, ok := res.(*domain.MobileCrew)
	if !ok || crew.MaxBookingsPerDay <= 0 {
		return false
	}
	return dailyCounts[crew.ID] >= crew.MaxBookingsPerDay
}
