package slotlock

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WashService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WashService/pkg/psqlbuilder"
)

// Repository краткоживущие блокировки слотов поверх PostgreSQL
//
// Ключ блокировки - пара (resource_id, window_key). Захват - атомарный
// "вставить, если отсутствует или истекла" в одном запросе; хранилище
// блокировок не является источником истины - потеря блокировки приводит
// максимум к безвредному повтору, но не портит данные бронирований.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр хранилища блокировок
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Acquire пытается захватить блокировку ключа (resourceID, windowKey)
// для владельца holderToken на срок ttl
// Возвращает ErrLockHeld, если блокировка удерживается и ещё не истекла
func (r *Repository) Acquire(ctx context.Context, resourceID int64, windowKey, holderToken string, ttl time.Duration) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("slot_locks").
		Columns("resource_id", "window_key", "holder_token", "expires_at").
		Values(resourceID, windowKey, holderToken, time.Now().Add(ttl)).
		Suffix(`ON CONFLICT (resource_id, window_key) DO UPDATE
			SET holder_token = EXCLUDED.holder_token, expires_at = EXCLUDED.expires_at
			WHERE slot_locks.expires_at < NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Acquire - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Acquire - execute insert: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Acquire - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrLockHeld
	}

	return nil
}

// Release снимает блокировку, если её всё ещё удерживает holderToken
// Снятие чужой или уже истекшей блокировки - не ошибка
func (r *Repository) Release(ctx context.Context, resourceID int64, windowKey, holderToken string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slot_locks").
		Where(squirrel.Eq{
			"resource_id":  resourceID,
			"window_key":   windowKey,
			"holder_token": holderToken,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Release - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Release - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}

// PurgeExpired удаляет истекшие блокировки; вызывается по расписанию
func (r *Repository) PurgeExpired(ctx context.Context) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slot_locks").
		Where(squirrel.Expr("expires_at < NOW()")).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: PurgeExpired - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: PurgeExpired - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: PurgeExpired - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}
