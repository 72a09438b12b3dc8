package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-route/internal/dto"
	"service-route/internal/entities"
	"service-route/internal/repositories"
	"service-route/pkg/constants"
	apperrors "service-route/pkg/errors"
	"service-route/pkg/keylock"
)

const (
	paymentPathCash    = "cash"
	paymentPathNonCash = "non_cash"
)

type PaymentServiceInterface interface {
	ConfirmCashPayment(ctx context.Context, id uint64) (*dto.PaymentCheckResultDTO, error)
	CheckPayment(ctx context.Context, id uint64) (*dto.PaymentCheckResultDTO, error)
}

type PaymentService struct {
	txManager   repositories.TxManagerInterface
	requestRepo repositories.RequestRepositoryInterface
	historyRepo repositories.RequestHistoryRepositoryInterface
	gateway     LedgerGateway
	timeout     time.Duration
	locks       *keylock.KeyedMutex
	logger      *zap.Logger
}

func NewPaymentService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	historyRepo repositories.RequestHistoryRepositoryInterface,
	gateway LedgerGateway,
	timeout time.Duration,
	locks *keylock.KeyedMutex,
	logger *zap.Logger,
) PaymentServiceInterface {
	return &PaymentService{
		txManager:   txManager,
		requestRepo: requestRepo,
		historyRepo: historyRepo,
		gateway:     gateway,
		timeout:     timeout,
		locks:       locks,
		logger:      logger.Named("payment_service"),
	}
}

// ConfirmCashPayment: инженер подтверждает получение наличных.
// Подтверждение в 1С необязательно, заявка помечается оплаченной в любом случае.
func (s *PaymentService) ConfirmCashPayment(ctx context.Context, id uint64) (*dto.PaymentCheckResultDTO, error) {
	details, err := s.requestRepo.FindDetailsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req := &details.Request

	if _, err := CheckTransition(req, ActionConfirmCash); err != nil {
		return nil, err
	}
	if req.PaymentMethod == nil || !req.PaymentMethod.IsCash() {
		return nil, wrongPath(req, paymentPathCash)
	}

	message := "Оплата наличными подтверждена"
	if req.HasDocument() {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		_, err := s.gateway.ConfirmCashPayment(callCtx, *req.Document1cID)
		cancel()
		if err != nil {
			s.logger.Warn("1С не подтвердила оплату наличными, заявка всё равно помечается оплаченной",
				zap.Uint64("requestID", id), zap.String("document1cId", *req.Document1cID), zap.Error(err))
			message += ", но 1С недоступна: оплата не отражена в учёте"
		}
	}

	updated, err := s.markPaid(ctx, id, req.Status, ActionConfirmCash, message)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentCheckResultDTO{Paid: true, Message: message, Request: updated}, nil
}

// CheckPayment запрашивает статус безналичной оплаты в 1С.
// Заявка становится оплаченной только при isPaid == true.
func (s *PaymentService) CheckPayment(ctx context.Context, id uint64) (*dto.PaymentCheckResultDTO, error) {
	details, err := s.requestRepo.FindDetailsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req := &details.Request

	if _, err := CheckTransition(req, ActionCheckPayment); err != nil {
		return nil, err
	}
	if req.PaymentMethod == nil || req.PaymentMethod.IsCash() {
		return nil, wrongPath(req, paymentPathNonCash)
	}
	if !req.HasDocument() {
		return nil, apperrors.NewValidationError("заказ по заявке %d ещё не зарегистрирован в 1С", id)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	status, err := s.gateway.PaymentStatus(callCtx, *req.Document1cID)
	cancel()
	if err != nil {
		s.logger.Error("Не удалось получить статус оплаты из 1С", zap.Uint64("requestID", id), zap.Error(err))
		return nil, err
	}

	if status.IsPaid == nil || !*status.IsPaid {
		message := "Оплата в 1С ещё не поступила"
		if status.Message != "" {
			message = status.Message
		}
		return &dto.PaymentCheckResultDTO{Paid: false, Message: message, Request: req}, nil
	}

	message := "Оплата подтверждена 1С"
	if status.PaidAt != "" {
		message += " (" + status.PaidAt + ")"
	}
	updated, err := s.markPaid(ctx, id, req.Status, ActionCheckPayment, message)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentCheckResultDTO{Paid: true, Message: message, Request: updated}, nil
}

// markPaid переводит заявку в paid под блокировкой.
// Если статус изменился после чтения, возвращается ConcurrencyError.
func (s *PaymentService) markPaid(ctx context.Context, id uint64, expected constants.RequestStatus, action RequestAction, comment string) (*entities.Request, error) {
	unlock := s.locks.Lock(requestLockKey(id))
	defer unlock()

	var updated *entities.Request
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.Status != expected {
			return apperrors.NewConcurrencyError(id, "статус изменился с '%s' на '%s'", expected, req.Status)
		}
		target, err := CheckTransition(req, action)
		if err != nil {
			return err
		}

		req.Status = target
		if err := s.requestRepo.UpdateInTx(ctx, tx, req); err != nil {
			return err
		}

		oldStatus := expected.String()
		newStatus := target.String()
		if err := newHistoryBatch(ctx, s.historyRepo, id).add(ctx, tx, constants.HistoryEventPaymentMarked, &oldStatus, &newStatus, &comment); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		s.logger.Warn("Не удалось отметить оплату", zap.Uint64("requestID", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Заявка оплачена", zap.Uint64("requestID", id), zap.String("action", string(action)))
	return updated, nil
}

func wrongPath(req *entities.Request, path string) error {
	method := ""
	if req.PaymentMethod != nil {
		method = string(*req.PaymentMethod)
	}
	return &apperrors.WrongPaymentPathError{RequestID: req.ID, PaymentMethod: method, Path: path}
}
