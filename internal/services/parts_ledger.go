package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-route/internal/entities"
	"service-route/internal/repositories"
	"service-route/pkg/constants"
	apperrors "service-route/pkg/errors"
)

// PartsLedger - операции над резервами внутри уже открытой транзакции.
// Проверку статуса заявки и блокировку выполняет вызывающий сервис.
type PartsLedger struct {
	reserveRepo  repositories.ReservePartRepositoryInterface
	catalogRepo  repositories.CatalogRepositoryInterface
	enforceStock bool
	logger       *zap.Logger
}

func NewPartsLedger(
	reserveRepo repositories.ReservePartRepositoryInterface,
	catalogRepo repositories.CatalogRepositoryInterface,
	enforceStock bool,
	logger *zap.Logger,
) *PartsLedger {
	return &PartsLedger{
		reserveRepo:  reserveRepo,
		catalogRepo:  catalogRepo,
		enforceStock: enforceStock,
		logger:       logger.Named("parts_ledger"),
	}
}

// ReserveInTx создаёт активный резерв. usedQuantity равен 0 для обычного резерва
// и quantity для запчасти, добавленной при завершении.
func (l *PartsLedger) ReserveInTx(ctx context.Context, tx pgx.Tx, req *entities.Request, partID uint64, quantity, usedQuantity int, batch *historyBatch) (*entities.ReservePart, error) {
	if !req.Status.AcceptsReservations() {
		return nil, checkStatusIn(req, ActionReserveParts, constants.RequestStatusAssigned, constants.RequestStatusInProgress)
	}
	if quantity <= 0 {
		return nil, apperrors.NewQuantityError("количество должно быть больше нуля, получено %d", quantity)
	}
	if usedQuantity < 0 || usedQuantity > quantity {
		return nil, apperrors.NewQuantityError("использовано %d из %d зарезервированных", usedQuantity, quantity)
	}

	part, err := l.catalogRepo.FindPart(ctx, partID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("запчасть %d не найдена", partID)
		}
		return nil, err
	}

	if err := l.checkStock(ctx, tx, part, quantity); err != nil {
		return nil, err
	}

	created, err := l.reserveRepo.CreateInTx(ctx, tx, &entities.ReservePart{
		RequestID:    req.ID,
		PartID:       part.ID,
		Quantity:     quantity,
		UsedQuantity: usedQuantity,
	})
	if err != nil {
		return nil, err
	}

	line := fmt.Sprintf("%s x%d", part.Name, quantity)
	if err := batch.add(ctx, tx, constants.HistoryEventPartReserved, nil, &line, nil); err != nil {
		return nil, err
	}
	return created, nil
}

// Остаток на складе не списывается. Проверяем, что активных резервов не больше остатка.
func (l *PartsLedger) checkStock(ctx context.Context, tx pgx.Tx, part *entities.Part, quantity int) error {
	reserved, err := l.reserveRepo.SumActiveReservedByPart(ctx, tx, part.ID)
	if err != nil {
		return err
	}

	available := part.Quantity - reserved
	if available >= quantity {
		return nil
	}

	if l.enforceStock {
		return apperrors.NewStockError("запчасть '%s': доступно %d, запрошено %d", part.Name, available, quantity)
	}
	l.logger.Warn("Резерв превышает остаток на складе",
		zap.Uint64("partID", part.ID), zap.Int("available", available), zap.Int("requested", quantity))
	return nil
}

// lockOwned блокирует резерв и проверяет, что он активен и принадлежит заявке.
func (l *PartsLedger) lockOwned(ctx context.Context, tx pgx.Tx, req *entities.Request, reservePartID uint64) (*entities.ReservePart, error) {
	reserve, err := l.reserveRepo.FindForUpdateInTx(ctx, tx, reservePartID)
	if err != nil {
		return nil, err
	}
	if reserve.RequestID != req.ID {
		return nil, apperrors.NewValidationError("резерв %d не относится к заявке %d", reservePartID, req.ID)
	}
	if !reserve.IsActive() {
		return nil, apperrors.NewValidationError("резерв %d уже закрыт", reservePartID)
	}
	return reserve, nil
}

// AdjustUsedInTx фиксирует фактический расход: 0 <= used <= quantity.
func (l *PartsLedger) AdjustUsedInTx(ctx context.Context, tx pgx.Tx, req *entities.Request, reservePartID uint64, used int, batch *historyBatch) error {
	reserve, err := l.lockOwned(ctx, tx, req, reservePartID)
	if err != nil {
		return err
	}
	if used < 0 || used > reserve.Quantity {
		return apperrors.NewQuantityError("резерв %d: использовано %d, допустимо от 0 до %d", reservePartID, used, reserve.Quantity)
	}
	if used == reserve.UsedQuantity {
		return nil
	}

	if err := l.reserveRepo.UpdateUsedQuantityInTx(ctx, tx, reservePartID, used); err != nil {
		return err
	}

	oldValue := fmt.Sprintf("%d", reserve.UsedQuantity)
	newValue := fmt.Sprintf("%d", used)
	comment := fmt.Sprintf("резерв %d", reservePartID)
	return batch.add(ctx, tx, constants.HistoryEventPartUsed, &oldValue, &newValue, &comment)
}

func (l *PartsLedger) RemoveInTx(ctx context.Context, tx pgx.Tx, req *entities.Request, reservePartID uint64, batch *historyBatch) error {
	if !req.Status.AcceptsReservations() {
		return checkStatusIn(req, ActionReserveParts, constants.RequestStatusAssigned, constants.RequestStatusInProgress)
	}
	reserve, err := l.lockOwned(ctx, tx, req, reservePartID)
	if err != nil {
		return err
	}
	if err := l.reserveRepo.DeleteInTx(ctx, tx, reservePartID); err != nil {
		return err
	}

	oldValue := fmt.Sprintf("запчасть %d x%d", reserve.PartID, reserve.Quantity)
	return batch.add(ctx, tx, constants.HistoryEventPartRemoved, &oldValue, nil, nil)
}

func (l *PartsLedger) ListActive(ctx context.Context, tx pgx.Tx, requestID uint64) ([]entities.ReservePartDetails, error) {
	return l.reserveRepo.ListByRequest(ctx, tx, requestID, true)
}
