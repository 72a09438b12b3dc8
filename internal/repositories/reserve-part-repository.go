package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-route/internal/entities"
	"service-route/pkg/constants"
	apperrors "service-route/pkg/errors"
)

const reservePartColumns = `rp.id, rp.request_id, rp.part_id, rp.quantity, rp.used_quantity, rp.status, rp.created_at`

type ReservePartRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, reserve *entities.ReservePart) (*entities.ReservePart, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.ReservePart, error)
	UpdateUsedQuantityInTx(ctx context.Context, tx pgx.Tx, id uint64, usedQuantity int) error
	DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error
	CloseByRequestInTx(ctx context.Context, tx pgx.Tx, requestID uint64) (int64, error)
	ListByRequest(ctx context.Context, tx pgx.Tx, requestID uint64, activeOnly bool) ([]entities.ReservePartDetails, error)
	SumActiveReservedByPart(ctx context.Context, tx pgx.Tx, partID uint64) (int, error)
}

type ReservePartRepository struct {
	storage *pgxpool.Pool
}

func NewReservePartRepository(storage *pgxpool.Pool) ReservePartRepositoryInterface {
	return &ReservePartRepository{storage: storage}
}

func scanReservePart(row pgx.Row, rp *entities.ReservePart, extra ...any) error {
	var status string
	dest := []any{&rp.ID, &rp.RequestID, &rp.PartID, &rp.Quantity, &rp.UsedQuantity, &status, &rp.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	rp.Status = constants.ReserveStatus(status)
	return nil
}

func (r *ReservePartRepository) CreateInTx(ctx context.Context, tx pgx.Tx, reserve *entities.ReservePart) (*entities.ReservePart, error) {
	query := `
		INSERT INTO reserve_parts AS rp (request_id, part_id, quantity, used_quantity, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + reservePartColumns

	var created entities.ReservePart
	err := scanReservePart(pick(tx, r.storage).QueryRow(ctx, query,
		reserve.RequestID, reserve.PartID, reserve.Quantity, reserve.UsedQuantity, string(constants.ReserveStatusActive),
	), &created)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать резерв запчасти: %w", err)
	}
	return &created, nil
}

func (r *ReservePartRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.ReservePart, error) {
	query := `SELECT ` + reservePartColumns + ` FROM reserve_parts rp WHERE rp.id = $1 FOR UPDATE`

	var rp entities.ReservePart
	if err := scanReservePart(pick(tx, r.storage).QueryRow(ctx, query, id), &rp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("резерв %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("не удалось получить резерв %d: %w", id, err)
	}
	return &rp, nil
}

func (r *ReservePartRepository) UpdateUsedQuantityInTx(ctx context.Context, tx pgx.Tx, id uint64, usedQuantity int) error {
	tag, err := pick(tx, r.storage).Exec(ctx,
		`UPDATE reserve_parts SET used_quantity = $2 WHERE id = $1 AND status = 'active'`, id, usedQuantity)
	if err != nil {
		return fmt.Errorf("не удалось обновить использованное количество резерва %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("активный резерв %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *ReservePartRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	tag, err := pick(tx, r.storage).Exec(ctx, `DELETE FROM reserve_parts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("не удалось удалить резерв %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("резерв %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// CloseByRequestInTx снимает все активные резервы заявки (при отмене).
func (r *ReservePartRepository) CloseByRequestInTx(ctx context.Context, tx pgx.Tx, requestID uint64) (int64, error) {
	tag, err := pick(tx, r.storage).Exec(ctx,
		`UPDATE reserve_parts SET status = 'closed' WHERE request_id = $1 AND status = 'active'`, requestID)
	if err != nil {
		return 0, fmt.Errorf("не удалось закрыть резервы заявки %d: %w", requestID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *ReservePartRepository) ListByRequest(ctx context.Context, tx pgx.Tx, requestID uint64, activeOnly bool) ([]entities.ReservePartDetails, error) {
	query := `
		SELECT ` + reservePartColumns + `, p.name, p.sku, p.unit, p.price, p.nomenclature_id
		FROM reserve_parts rp
		JOIN parts p ON p.id = rp.part_id
		WHERE rp.request_id = $1 AND ($2 = FALSE OR rp.status = 'active')
		ORDER BY rp.id`

	rows, err := pick(tx, r.storage).Query(ctx, query, requestID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить резервы заявки %d: %w", requestID, err)
	}
	defer rows.Close()

	list := make([]entities.ReservePartDetails, 0)
	for rows.Next() {
		var d entities.ReservePartDetails
		if err := scanReservePart(rows, &d.ReservePart, &d.PartName, &d.PartSku, &d.PartUnit, &d.PartPrice, &d.NomenclatureID); err != nil {
			return nil, fmt.Errorf("ошибка сканирования резерва: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// SumActiveReservedByPart - сколько единиц запчасти зарезервировано по всем заявкам.
func (r *ReservePartRepository) SumActiveReservedByPart(ctx context.Context, tx pgx.Tx, partID uint64) (int, error) {
	var total int
	err := pick(tx, r.storage).QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM reserve_parts WHERE part_id = $1 AND status = 'active'`, partID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("не удалось посчитать резервы запчасти %d: %w", partID, err)
	}
	return total, nil
}
