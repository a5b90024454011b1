package feeledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WashService/pkg/psqlbuilder"
)

// uniqueViolation код ошибки PostgreSQL при нарушении уникального ограничения
const uniqueViolation = "23505"

// Repository журнал начисленных сборов
// Записи неизменяемы; уникальный индекс (booking_id, kind) гарантирует,
// что каждый сбор начисляется не более одного раза
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр журнала сборов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert записывает начисленный сбор
// Повторное начисление того же вида сбора возвращает ErrDuplicateFee
func (r *Repository) Insert(ctx context.Context, entry *domain.FeeLedgerEntry) (*domain.FeeLedgerEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("fee_ledger").
		Columns("booking_id", "kind", "amount").
		Values(entry.BookingID, entry.Kind, entry.Amount).
		Suffix("RETURNING id, charged_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	var chargedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &chargedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrDuplicateFee
		}
		return nil, fmt.Errorf("%w: Insert - execute insert: %v", ErrExecQuery, err)
	}

	entry.ChargedAt = chargedAt.Time
	return entry, nil
}

// ListByBooking возвращает все сборы бронирования
func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.FeeLedgerEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "booking_id", "kind", "amount", "charged_at").
		From("fee_ledger").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("charged_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.FeeLedgerEntry, 0)
	for rows.Next() {
		var entry domain.FeeLedgerEntry
		if err := rows.Scan(&entry.ID, &entry.BookingID, &entry.Kind, &entry.Amount, &entry.ChargedAt); err != nil {
			return nil, fmt.Errorf("%w: ListByBooking - scan row: %v", ErrScanRow, err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}
