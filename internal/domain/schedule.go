package domain

import (
	"time"

	"github.com/m04kA/SMC-WashService/pkg/types"
)

// DaySchedule is the operating window for one day of week
type DaySchedule struct {
	IsOpen    bool
	OpenTime  types.TimeString
	CloseTime types.TimeString
}

// BreakWindow is a daily period excluded from slot generation (staff breaks)
type BreakWindow struct {
	Start types.TimeString
	End   types.TimeString
}

// WeekSchedule holds the operating hours for each day of the week
type WeekSchedule struct {
	Monday    DaySchedule
	Tuesday   DaySchedule
	Wednesday DaySchedule
	Thursday  DaySchedule
	Friday    DaySchedule
	Saturday  DaySchedule
	Sunday    DaySchedule
}

// ForDay returns the schedule for the given day of week
func (w WeekSchedule) ForDay(weekday time.Weekday) DaySchedule {
	switch weekday {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DaySchedule{IsOpen: false}
	}
}

// ScheduleConfig is the scheduling configuration for resources.
// A config with ResourceID = nil applies to every resource; a resource-specific
// config overrides the global one, mirroring the storage hierarchy.
type ScheduleConfig struct {
	ID         int64
	ResourceID *int64

	Week          WeekSchedule
	Breaks        []BreakWindow
	BlackoutDates []time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsGlobal returns true if the config applies to all resources
func (c *ScheduleConfig) IsGlobal() bool {
	return c.ResourceID == nil
}

// IsBlackout returns true if date falls on a configured blackout date
func (c *ScheduleConfig) IsBlackout(date time.Time) bool {
	y, m, d := date.Date()
	for _, b := range c.BlackoutDates {
		by, bm, bd := b.Date()
		if y == by && m == bm && d == bd {
			return true
		}
	}
	return false
}
