package resource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WashService/pkg/psqlbuilder"
)

// resourceColumns список колонок таблицы resources в порядке сканирования
// Колонки обоих вариантов хранятся в одной таблице; NULL-поля не относятся
// к типу строки
var resourceColumns = []string{
	"id",
	"type",
	"name",
	"status",
	"max_vehicle_size",
	"base_lat",
	"base_lng",
	"service_radius_km",
	"max_bookings_per_day",
	"equipment",
}

// Repository реестр ресурсов: стационарные боксы и мобильные бригады
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр реестра ресурсов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает ресурс по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (domain.Resource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(resourceColumns...).
		From("resources").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanResource(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}

	return res, nil
}

// ListActive возвращает все ресурсы в статусе active, опционально по типу
// Порядок детерминированный - по возрастанию ID
func (r *Repository) ListActive(ctx context.Context, resourceType *domain.ResourceType) ([]domain.Resource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(resourceColumns...).
		From("resources").
		Where(squirrel.Eq{"status": domain.ResourceActive}).
		OrderBy("id ASC")

	if resourceType != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"type": *resourceType})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	resources := make([]domain.Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActive - rows error: %v", ErrScanRow, err)
	}

	return resources, nil
}

// scanner общий интерфейс *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanResource сканирует строку ресурса и собирает нужный вариант типа
func scanResource(s scanner) (domain.Resource, error) {
	var (
		id                int64
		resourceType      domain.ResourceType
		name              string
		status            domain.ResourceStatus
		maxVehicleSize    sql.NullString
		baseLat           sql.NullFloat64
		baseLng           sql.NullFloat64
		serviceRadiusKm   sql.NullFloat64
		maxBookingsPerDay sql.NullInt64
		equipment         pq.StringArray
	)

	err := s.Scan(
		&id,
		&resourceType,
		&name,
		&status,
		&maxVehicleSize,
		&baseLat,
		&baseLng,
		&serviceRadiusKm,
		&maxBookingsPerDay,
		&equipment,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanResource - scan row: %v", ErrScanRow, err)
	}

	switch resourceType {
	case domain.ResourceFixedBay:
		return &domain.FixedBay{
			ID:             id,
			Name:           name,
			MaxVehicleSize: domain.VehicleSize(maxVehicleSize.String),
			Equipment:      equipment,
			Status:         status,
		}, nil

	case domain.ResourceMobileCrew:
		return &domain.MobileCrew{
			ID:                id,
			Name:              name,
			BaseLat:           baseLat.Float64,
			BaseLng:           baseLng.Float64,
			ServiceRadiusKm:   serviceRadiusKm.Float64,
			MaxBookingsPerDay: int(maxBookingsPerDay.Int64),
			Equipment:         equipment,
			Status:            status,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResourceType, resourceType)
	}
}
