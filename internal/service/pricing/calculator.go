package pricing

import (
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
)

// Config тарифные параметры расчёта платежей
type Config struct {
	// OvertimeRatePerMinute ставка за минуту сверх расчётной длительности
	OvertimeRatePerMinute float64
	// FreeCancelHours порог бесплатной отмены в часах до начала; 0 отключает бесплатный уровень
	FreeCancelHours int
	// LateCancelHours порог поздней отмены в часах до начала
	LateCancelHours int
}

// Calculator чистые расчёты стоимости: квота, овертайм, штрафы за отмену и неявку
type Calculator struct {
	cfg Config
}

// NewCalculator создаёт калькулятор с заданными тарифами
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Quote суммирует позиции заказа и ограничивает итог глобальным максимумом
func (c *Calculator) Quote(items []domain.ServiceLineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.TotalPrice()
	}
	if total > domain.MaxEstimatedPrice {
		total = domain.MaxEstimatedPrice
	}
	return total
}

// OvertimeFee возвращает доплату за фактическую длительность сверх расчётной.
// Если работа уложилась в расчётное время, доплата равна нулю.
func (c *Calculator) OvertimeFee(estimatedMinutes, actualMinutes int) float64 {
	excess := actualMinutes - estimatedMinutes
	if excess <= 0 {
		return 0
	}
	return float64(excess) * c.cfg.OvertimeRatePerMinute
}

// CancellationFee рассчитывает штраф за отмену по времени уведомления:
// не позднее FreeCancelHours до начала - бесплатно, не позднее LateCancelHours -
// половина стоимости, позже - полная стоимость.
func (c *Calculator) CancellationFee(quote float64, scheduledAt, now time.Time) float64 {
	notice := scheduledAt.Sub(now)
	if c.cfg.FreeCancelHours > 0 && notice >= time.Duration(c.cfg.FreeCancelHours)*time.Hour {
		return 0
	}
	if notice >= time.Duration(c.cfg.LateCancelHours)*time.Hour {
		return quote * 0.5
	}
	return quote
}

// NoShowFee возвращает штраф за неявку - полную расчётную стоимость
func (c *Calculator) NoShowFee(quote float64) float64 {
	return quote
}
