package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-route/internal/entities"
	apperrors "service-route/pkg/errors"
)

// CatalogRepositoryInterface - справочники запчастей, услуг и типов оборудования. Только чтение.
type CatalogRepositoryInterface interface {
	FindPart(ctx context.Context, id uint64) (*entities.Part, error)
	FindService(ctx context.Context, id uint64) (*entities.ServiceItem, error)
	FindEquipmentType(ctx context.Context, id uint64) (*entities.EquipmentType, error)
	ListParts(ctx context.Context) ([]entities.Part, error)
	ListServices(ctx context.Context) ([]entities.ServiceItem, error)
}

type CatalogRepository struct {
	storage *pgxpool.Pool
}

func NewCatalogRepository(storage *pgxpool.Pool) CatalogRepositoryInterface {
	return &CatalogRepository{storage: storage}
}

func (r *CatalogRepository) FindPart(ctx context.Context, id uint64) (*entities.Part, error) {
	query := `SELECT id, name, sku, unit, price, quantity, nomenclature_id FROM parts WHERE id = $1`

	var p entities.Part
	err := r.storage.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Sku, &p.Unit, &p.Price, &p.Quantity, &p.NomenclatureID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("запчасть %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("не удалось получить запчасть %d: %w", id, err)
	}
	return &p, nil
}

func (r *CatalogRepository) FindService(ctx context.Context, id uint64) (*entities.ServiceItem, error) {
	query := `SELECT id, name, sku, unit, price, nomenclature_id FROM services WHERE id = $1`

	var s entities.ServiceItem
	err := r.storage.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Sku, &s.Unit, &s.Price, &s.NomenclatureID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("услуга %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("не удалось получить услугу %d: %w", id, err)
	}
	return &s, nil
}

func (r *CatalogRepository) FindEquipmentType(ctx context.Context, id uint64) (*entities.EquipmentType, error) {
	var et entities.EquipmentType
	err := r.storage.QueryRow(ctx, `SELECT id, name, is_other FROM equipment_types WHERE id = $1`, id).
		Scan(&et.ID, &et.Name, &et.IsOther)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("тип оборудования %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("не удалось получить тип оборудования %d: %w", id, err)
	}
	return &et, nil
}

func (r *CatalogRepository) ListParts(ctx context.Context) ([]entities.Part, error) {
	rows, err := r.storage.Query(ctx, `SELECT id, name, sku, unit, price, quantity, nomenclature_id FROM parts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список запчастей: %w", err)
	}
	defer rows.Close()

	parts := make([]entities.Part, 0)
	for rows.Next() {
		var p entities.Part
		if err := rows.Scan(&p.ID, &p.Name, &p.Sku, &p.Unit, &p.Price, &p.Quantity, &p.NomenclatureID); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

func (r *CatalogRepository) ListServices(ctx context.Context) ([]entities.ServiceItem, error) {
	rows, err := r.storage.Query(ctx, `SELECT id, name, sku, unit, price, nomenclature_id FROM services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список услуг: %w", err)
	}
	defer rows.Close()

	items := make([]entities.ServiceItem, 0)
	for rows.Next() {
		var s entities.ServiceItem
		if err := rows.Scan(&s.ID, &s.Name, &s.Sku, &s.Unit, &s.Price, &s.NomenclatureID); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
