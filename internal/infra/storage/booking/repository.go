package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WashService/pkg/psqlbuilder"
)

// bookingColumns полный список колонок таблицы bookings в порядке сканирования
var bookingColumns = []string{
	"id",
	"customer_id",
	"resource_id",
	"scheduled_at",
	"duration_minutes",
	"estimated_price",
	"status",
	"actual_start_at",
	"actual_end_at",
	"rating",
	"feedback",
	"vehicle_size",
	"vehicle_plate",
	"pickup_lat",
	"pickup_lng",
	"notes",
	"payment_reference",
	"cancellation_reason",
	"created_by",
	"confirmed_by",
	"confirmed_at",
	"started_by",
	"started_at",
	"completed_at",
	"cancelled_by",
	"cancelled_at",
	"no_show_by",
	"no_show_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями и их позициями услуг
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование вместе с позициями услуг
// Если в контексте передана активная транзакция, обе вставки выполняются в ней
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"customer_id",
			"resource_id",
			"scheduled_at",
			"duration_minutes",
			"estimated_price",
			"status",
			"vehicle_size",
			"vehicle_plate",
			"pickup_lat",
			"pickup_lng",
			"notes",
			"payment_reference",
			"created_by",
		).
		Values(
			b.CustomerID,
			b.ResourceID,
			b.ScheduledAt,
			b.DurationMinutes,
			b.EstimatedPrice,
			b.Status,
			b.VehicleSize,
			b.VehiclePlate,
			b.PickupLat,
			b.PickupLng,
			b.Notes,
			b.PaymentReference,
			b.CreatedBy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	if err := r.insertLineItems(ctx, executor, b.ID, b.Items); err != nil {
		return nil, err
	}

	return b, nil
}

// GetByID получает бронирование по ID вместе с позициями услуг
// Внутри транзакции строка блокируется через FOR UPDATE, чтобы переходы
// статусов применялись по принципу "последний коммит побеждает"
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	items, err := r.loadLineItems(ctx, executor, []int64{b.ID})
	if err != nil {
		return nil, err
	}
	b.Items = items[b.ID]

	return b, nil
}

// GetByCustomer получает бронирования пользователя, опционально по статусу
func (r *Repository) GetByCustomer(ctx context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("scheduled_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomer - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomer - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookingsWithItems(ctx, executor, rows)
}

// GetActiveByResources получает активные бронирования на ресурсах,
// пересекающиеся с интервалом [from, to)
// Используется калькулятором доступности и повторной проверкой конфликтов
// внутри блокировки слота; внутри транзакции строки блокируются FOR UPDATE
func (r *Repository) GetActiveByResources(ctx context.Context, resourceIDs []int64, from, to time.Time) ([]*domain.Booking, error) {
	if len(resourceIDs) == 0 {
		return []*domain.Booking{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	inactive := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		inactive[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Expr("resource_id = ANY(?)", pq.Array(resourceIDs))).
		Where(squirrel.NotEq{"status": inactive}).
		Where(squirrel.Expr("scheduled_at < ?", to)).
		Where(squirrel.Expr("scheduled_at + duration_minutes * interval '1 minute' > ?", from)).
		OrderBy("scheduled_at ASC, resource_id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByResources - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByResources - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookingsWithItems(ctx, executor, rows)
}

// CountActiveOnDate подсчитывает активные бронирования ресурса за день [dayStart, dayEnd)
// Используется для дневного лимита мобильных бригад
func (r *Repository) CountActiveOnDate(ctx context.Context, resourceID int64, dayStart, dayEnd time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	inactive := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		inactive[i] = string(s)
	}

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.NotEq{"status": inactive}).
		Where(squirrel.GtOrEq{"scheduled_at": dayStart}).
		Where(squirrel.Lt{"scheduled_at": dayEnd}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveOnDate - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveOnDate - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// UpdateSchedule фиксирует перенос бронирования: новое окно и новый ресурс
// Старое окно освобождается тем же атомарным обновлением, которое занимает новое
func (r *Repository) UpdateSchedule(ctx context.Context, id int64, resourceID int64, scheduledAt time.Time, durationMinutes int) error {
	return r.update(ctx, "UpdateSchedule", id, map[string]interface{}{
		"resource_id":      resourceID,
		"scheduled_at":     scheduledAt,
		"duration_minutes": durationMinutes,
	})
}

// Confirm переводит бронирование в confirmed с записью аудита
func (r *Repository) Confirm(ctx context.Context, id int64, actor int64, at time.Time) error {
	return r.update(ctx, "Confirm", id, map[string]interface{}{
		"status":       domain.StatusConfirmed,
		"confirmed_by": actor,
		"confirmed_at": at,
	})
}

// Start переводит бронирование в in_progress и фиксирует фактическое начало
func (r *Repository) Start(ctx context.Context, id int64, actor int64, at time.Time) error {
	return r.update(ctx, "Start", id, map[string]interface{}{
		"status":          domain.StatusInProgress,
		"started_by":      actor,
		"started_at":      at,
		"actual_start_at": at,
	})
}

// Complete переводит бронирование в completed и фиксирует фактическое окончание
func (r *Repository) Complete(ctx context.Context, id int64, endAt time.Time) error {
	return r.update(ctx, "Complete", id, map[string]interface{}{
		"status":        domain.StatusCompleted,
		"actual_end_at": endAt,
		"completed_at":  endAt,
	})
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, actor int64, reason string, at time.Time) error {
	return r.update(ctx, "Cancel", id, map[string]interface{}{
		"status":              domain.StatusCancelled,
		"cancelled_by":        actor,
		"cancelled_at":        at,
		"cancellation_reason": reason,
	})
}

// MarkNoShow переводит бронирование в no_show с записью аудита
func (r *Repository) MarkNoShow(ctx context.Context, id int64, actor int64, reason *string, at time.Time) error {
	return r.update(ctx, "MarkNoShow", id, map[string]interface{}{
		"status":              domain.StatusNoShow,
		"no_show_by":          actor,
		"no_show_at":          at,
		"cancellation_reason": reason,
	})
}

// SetRating сохраняет оценку и отзыв завершенного бронирования
func (r *Repository) SetRating(ctx context.Context, id int64, rating int, feedback *string) error {
	return r.update(ctx, "SetRating", id, map[string]interface{}{
		"rating":   rating,
		"feedback": feedback,
	})
}

// ReplaceLineItems заменяет позиции услуг бронирования и пересчитанные итоги
func (r *Repository) ReplaceLineItems(ctx context.Context, id int64, items []domain.ServiceLineItem, durationMinutes int, estimatedPrice float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("booking_services").
		Where(squirrel.Eq{"booking_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceLineItems - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceLineItems - delete old items: %v", ErrExecQuery, err)
	}

	if err := r.insertLineItems(ctx, executor, id, items); err != nil {
		return err
	}

	return r.update(ctx, "ReplaceLineItems", id, map[string]interface{}{
		"duration_minutes": durationMinutes,
		"estimated_price":  estimatedPrice,
	})
}

// update выполняет частичное обновление строки бронирования
func (r *Repository) update(ctx context.Context, op string, id int64, fields map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	for column, value := range fields {
		updateBuilder = updateBuilder.Set(column, value)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// insertLineItems вставляет позиции услуг бронирования
func (r *Repository) insertLineItems(ctx context.Context, executor DBExecutor, bookingID int64, items []domain.ServiceLineItem) error {
	if len(items) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("booking_services").
		Columns("booking_id", "service_id", "name", "unit_price", "unit_duration_minutes", "quantity")

	for _, item := range items {
		insertBuilder = insertBuilder.Values(
			bookingID,
			item.ServiceID,
			item.Name,
			item.UnitPrice,
			item.UnitDurationMinutes,
			item.Quantity,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertLineItems - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertLineItems - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// loadLineItems загружает позиции услуг для набора бронирований
func (r *Repository) loadLineItems(ctx context.Context, executor DBExecutor, bookingIDs []int64) (map[int64][]domain.ServiceLineItem, error) {
	result := make(map[int64][]domain.ServiceLineItem, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return result, nil
	}

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"service_id",
		"name",
		"unit_price",
		"unit_duration_minutes",
		"quantity",
	).
		From("booking_services").
		Where(squirrel.Expr("booking_id = ANY(?)", pq.Array(bookingIDs))).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: loadLineItems - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadLineItems - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.ServiceLineItem
		var bookingID int64

		err := rows.Scan(
			&item.ID,
			&bookingID,
			&item.ServiceID,
			&item.Name,
			&item.UnitPrice,
			&item.UnitDurationMinutes,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: loadLineItems - scan row: %v", ErrScanRow, err)
		}

		result[bookingID] = append(result[bookingID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadLineItems - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// scanner общий интерфейс *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку бронирования
func scanBooking(s scanner) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := s.Scan(
		&b.ID,
		&b.CustomerID,
		&b.ResourceID,
		&b.ScheduledAt,
		&b.DurationMinutes,
		&b.EstimatedPrice,
		&b.Status,
		&b.ActualStartAt,
		&b.ActualEndAt,
		&b.Rating,
		&b.Feedback,
		&b.VehicleSize,
		&b.VehiclePlate,
		&b.PickupLat,
		&b.PickupLng,
		&b.Notes,
		&b.PaymentReference,
		&b.CancellationReason,
		&b.CreatedBy,
		&b.ConfirmedBy,
		&b.ConfirmedAt,
		&b.StartedBy,
		&b.StartedAt,
		&b.CompletedAt,
		&b.CancelledBy,
		&b.CancelledAt,
		&b.NoShowBy,
		&b.NoShowAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// scanBookingsWithItems сканирует список бронирований и подгружает их позиции
func (r *Repository) scanBookingsWithItems(ctx context.Context, executor DBExecutor, rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)
	ids := make([]int64, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookingsWithItems - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
		ids = append(ids, b.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookingsWithItems - rows error: %v", ErrScanRow, err)
	}

	items, err := r.loadLineItems(ctx, executor, ids)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		b.Items = items[b.ID]
	}

	return bookings, nil
}
