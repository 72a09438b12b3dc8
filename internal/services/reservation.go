package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-route/internal/dto"
	"service-route/internal/entities"
	"service-route/internal/repositories"
	apperrors "service-route/pkg/errors"
	"service-route/pkg/keylock"
)

type ReservationServiceInterface interface {
	Reserve(ctx context.Context, requestID, partID uint64, quantity int) (*entities.ReservePart, error)
	ReserveMany(ctx context.Context, requestID uint64, items []dto.ReservePartItemDTO) ([]entities.ReservePart, error)
	Remove(ctx context.Context, requestID, reservePartID uint64) error
	ListActive(ctx context.Context, requestID uint64) ([]entities.ReservePartDetails, error)
	ListAll(ctx context.Context, requestID uint64) ([]entities.ReservePartDetails, error)
}

type ReservationService struct {
	txManager   repositories.TxManagerInterface
	requestRepo repositories.RequestRepositoryInterface
	reserveRepo repositories.ReservePartRepositoryInterface
	historyRepo repositories.RequestHistoryRepositoryInterface
	ledger      *PartsLedger
	locks       *keylock.KeyedMutex
	logger      *zap.Logger
}

func NewReservationService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	reserveRepo repositories.ReservePartRepositoryInterface,
	historyRepo repositories.RequestHistoryRepositoryInterface,
	ledger *PartsLedger,
	locks *keylock.KeyedMutex,
	logger *zap.Logger,
) ReservationServiceInterface {
	return &ReservationService{
		txManager:   txManager,
		requestRepo: requestRepo,
		reserveRepo: reserveRepo,
		historyRepo: historyRepo,
		ledger:      ledger,
		locks:       locks,
		logger:      logger.Named("reservation_service"),
	}
}

func (s *ReservationService) Reserve(ctx context.Context, requestID, partID uint64, quantity int) (*entities.ReservePart, error) {
	created, err := s.ReserveMany(ctx, requestID, []dto.ReservePartItemDTO{{PartID: partID, Quantity: quantity}})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// ReserveMany резервирует несколько запчастей одной транзакцией: либо все, либо ни одной.
func (s *ReservationService) ReserveMany(ctx context.Context, requestID uint64, items []dto.ReservePartItemDTO) ([]entities.ReservePart, error) {
	if len(items) == 0 {
		return nil, apperrors.NewValidationError("не выбрано ни одной запчасти")
	}

	unlock := s.locks.Lock(requestLockKey(requestID))
	defer unlock()

	created := make([]entities.ReservePart, 0, len(items))
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindForUpdateInTx(ctx, tx, requestID)
		if err != nil {
			return err
		}

		batch := newHistoryBatch(ctx, s.historyRepo, requestID)
		for _, item := range items {
			reserve, err := s.ledger.ReserveInTx(ctx, tx, req, item.PartID, item.Quantity, 0, batch)
			if err != nil {
				return err
			}
			created = append(created, *reserve)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Резервирование отклонено", zap.Uint64("requestID", requestID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Запчасти зарезервированы", zap.Uint64("requestID", requestID), zap.Int("count", len(created)))
	return created, nil
}

func (s *ReservationService) Remove(ctx context.Context, requestID, reservePartID uint64) error {
	unlock := s.locks.Lock(requestLockKey(requestID))
	defer unlock()

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindForUpdateInTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		return s.ledger.RemoveInTx(ctx, tx, req, reservePartID, newHistoryBatch(ctx, s.historyRepo, requestID))
	})
	if err != nil {
		s.logger.Warn("Удаление резерва отклонено",
			zap.Uint64("requestID", requestID), zap.Uint64("reservePartID", reservePartID), zap.Error(err))
		return err
	}

	s.logger.Info("Резерв удалён", zap.Uint64("requestID", requestID), zap.Uint64("reservePartID", reservePartID))
	return nil
}

func (s *ReservationService) ListActive(ctx context.Context, requestID uint64) ([]entities.ReservePartDetails, error) {
	return s.ledger.ListActive(ctx, nil, requestID)
}

func (s *ReservationService) ListAll(ctx context.Context, requestID uint64) ([]entities.ReservePartDetails, error) {
	return s.reserveRepo.ListByRequest(ctx, nil, requestID, false)
}
