package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WashService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-WashService/pkg/types"
)

// Repository репозиторий расписаний работы ресурсов
//
// Иерархия конфигурации:
// 1. Расписание конкретного ресурса (resource_id = X)
// 2. Глобальное расписание (resource_id IS NULL)
// Часы работы и перерывы ресурса полностью заменяют глобальные;
// даты блэкаутов объединяются (глобальные действуют для всех ресурсов)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetConfig собирает расписание для ресурса с учетом иерархии
// Если resourceID = nil, возвращается глобальное расписание
func (r *Repository) GetConfig(ctx context.Context, resourceID *int64) (*domain.ScheduleConfig, error) {
	week, found, err := r.loadWeek(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if !found && resourceID != nil {
		// Нет расписания ресурса - берем глобальное
		week, found, err = r.loadWeek(ctx, nil)
		if err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, ErrScheduleNotFound
	}

	breaks, err := r.loadBreaks(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	blackouts, err := r.loadBlackouts(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	return &domain.ScheduleConfig{
		ResourceID:    resourceID,
		Week:          week,
		Breaks:        breaks,
		BlackoutDates: blackouts,
	}, nil
}

// loadWeek загружает часы работы по дням недели для одного скоупа
func (r *Repository) loadWeek(ctx context.Context, resourceID *int64) (domain.WeekSchedule, bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("weekday", "is_open", "open_time", "close_time").
		From("schedule_hours").
		OrderBy("weekday ASC")

	if resourceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *resourceID})
	} else {
		selectBuilder = selectBuilder.Where("resource_id IS NULL")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return domain.WeekSchedule{}, false, fmt.Errorf("%w: loadWeek - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.WeekSchedule{}, false, fmt.Errorf("%w: loadWeek - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var week domain.WeekSchedule
	found := false

	for rows.Next() {
		var weekday int
		var day domain.DaySchedule

		if err := rows.Scan(&weekday, &day.IsOpen, &day.OpenTime, &day.CloseTime); err != nil {
			return domain.WeekSchedule{}, false, fmt.Errorf("%w: loadWeek - scan row: %v", ErrScanRow, err)
		}

		setDay(&week, time.Weekday(weekday), day)
		found = true
	}

	if err := rows.Err(); err != nil {
		return domain.WeekSchedule{}, false, fmt.Errorf("%w: loadWeek - rows error: %v", ErrScanRow, err)
	}

	return week, found, nil
}

// loadBreaks загружает перерывы: перерывы ресурса заменяют глобальные
func (r *Repository) loadBreaks(ctx context.Context, resourceID *int64) ([]domain.BreakWindow, error) {
	breaks, err := r.queryBreaks(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if len(breaks) == 0 && resourceID != nil {
		return r.queryBreaks(ctx, nil)
	}
	return breaks, nil
}

func (r *Repository) queryBreaks(ctx context.Context, resourceID *int64) ([]domain.BreakWindow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("start_time", "end_time").
		From("schedule_breaks").
		OrderBy("start_time ASC")

	if resourceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *resourceID})
	} else {
		selectBuilder = selectBuilder.Where("resource_id IS NULL")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: queryBreaks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: queryBreaks - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	breaks := make([]domain.BreakWindow, 0)
	for rows.Next() {
		var start, end types.TimeString
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("%w: queryBreaks - scan row: %v", ErrScanRow, err)
		}
		breaks = append(breaks, domain.BreakWindow{Start: start, End: end})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: queryBreaks - rows error: %v", ErrScanRow, err)
	}

	return breaks, nil
}

// loadBlackouts загружает даты блэкаутов: глобальные + даты ресурса
func (r *Repository) loadBlackouts(ctx context.Context, resourceID *int64) ([]time.Time, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("date").
		From("blackout_dates").
		OrderBy("date ASC")

	if resourceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.Expr("resource_id IS NULL"),
			squirrel.Eq{"resource_id": *resourceID},
		})
	} else {
		selectBuilder = selectBuilder.Where("resource_id IS NULL")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadBlackouts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadBlackouts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("%w: loadBlackouts - scan row: %v", ErrScanRow, err)
		}
		dates = append(dates, date)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadBlackouts - rows error: %v", ErrScanRow, err)
	}

	return dates, nil
}

func setDay(week *domain.WeekSchedule, weekday time.Weekday, day domain.DaySchedule) {
	switch weekday {
	case time.Monday:
		week.Monday = day
	case time.Tuesday:
		week.Tuesday = day
	case time.Wednesday:
		week.Wednesday = day
	case time.Thursday:
		week.Thursday = day
	case time.Friday:
		week.Friday = day
	case time.Saturday:
		week.Saturday = day
	case time.Sunday:
		week.Sunday = day
	}
}
