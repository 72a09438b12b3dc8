package services

import (
	"context"
	"fmt"
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

type CompletionServiceInterface interface {
	CompleteRequest(ctx context.Context, id uint64, data dto.CompleteRequestDTO) (*dto.CompletionResultDTO, error)
	ResubmitOrder(ctx context.Context, id uint64, data dto.ResubmitOrderDTO) (*dto.CompletionResultDTO, error)
}

type CompletionService struct {
	txManager   repositories.TxManagerInterface
	requestRepo repositories.RequestRepositoryInterface
	historyRepo repositories.RequestHistoryRepositoryInterface
	ledger      *PartsLedger
	assembler   OrderAssemblerInterface
	locks       *keylock.KeyedMutex
	logger      *zap.Logger
	now         func() time.Time
}

func NewCompletionService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	historyRepo repositories.RequestHistoryRepositoryInterface,
	ledger *PartsLedger,
	assembler OrderAssemblerInterface,
	locks *keylock.KeyedMutex,
	logger *zap.Logger,
) CompletionServiceInterface {
	return &CompletionService{
		txManager:   txManager,
		requestRepo: requestRepo,
		historyRepo: historyRepo,
		ledger:      ledger,
		assembler:   assembler,
		locks:       locks,
		logger:      logger.Named("completion_service"),
		now:         time.Now,
	}
}

// CompleteRequest переводит заявку в completed и отправляет заказ в 1С.
// Локальное завершение фиксируется до сетевого вызова: сбой отправки
// возвращается в Submission, а не ошибкой.
func (s *CompletionService) CompleteRequest(ctx context.Context, id uint64, data dto.CompleteRequestDTO) (*dto.CompletionResultDTO, error) {
	if !data.PaymentMethod.IsValid() {
		return nil, apperrors.NewValidationError("неизвестный способ оплаты: %s", data.PaymentMethod)
	}

	unlock := s.locks.Lock(requestLockKey(id))

	var (
		completed *entities.Request
		payload   *dto.CompletedOrderPayloadDTO
	)
	startedAt := s.submissionStamp()
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		target, err := CheckTransition(req, ActionComplete)
		if err != nil {
			return err
		}

		batch := newHistoryBatch(ctx, s.historyRepo, id)
		for _, reservePartID := range data.RemoveReservePartIDs {
			if err := s.ledger.RemoveInTx(ctx, tx, req, reservePartID, batch); err != nil {
				return err
			}
		}
		for _, used := range data.Reservations {
			if err := s.ledger.AdjustUsedInTx(ctx, tx, req, used.ReservePartID, used.UsedQuantity, batch); err != nil {
				return err
			}
		}
		for _, part := range data.NewParts {
			if _, err := s.ledger.ReserveInTx(ctx, tx, req, part.PartID, part.Quantity, part.Quantity, batch); err != nil {
				return err
			}
		}

		active, err := s.ledger.ListActive(ctx, tx, id)
		if err != nil {
			return err
		}
		payload, err = s.assembler.Assemble(ctx, req, data.Services, active, data.PaymentMethod, data.SourceOrderID)
		if err != nil {
			return err
		}

		oldStatus := req.Status.String()
		method := data.PaymentMethod
		req.Status = target
		req.PaymentMethod = &method
		req.SubmissionStartedAt = &startedAt
		if err := s.requestRepo.UpdateInTx(ctx, tx, req); err != nil {
			return err
		}

		newStatus := target.String()
		comment := "способ оплаты: " + constants.PaymentMethodNames[method]
		if err := batch.add(ctx, tx, constants.HistoryEventStatusChanged, &oldStatus, &newStatus, &comment); err != nil {
			return err
		}

		completed = req
		return nil
	})
	unlock()
	if err != nil {
		s.logger.Warn("Завершение заявки отклонено", zap.Uint64("requestID", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Заявка завершена, отправка заказа в 1С", zap.Uint64("requestID", id))
	result := s.submitAndPersist(ctx, completed, *payload, startedAt)
	result.Submission.Message = completionMessage(result.Submission)
	return result, nil
}

// completionMessage: заявка завершена в любом случае, сбой 1С - отдельная часть сообщения.
func completionMessage(submission dto.SubmissionResultDTO) string {
	if !submission.Success {
		return fmt.Sprintf("Заявка завершена, но ошибка при отправке заказа в 1С: %v", submission.Err)
	}
	return "Заявка завершена. " + submission.Message
}

// ResubmitOrder повторяет отправку для завершённой заявки, у которой ещё нет документа 1С.
// Пока идёт другая отправка по этой заявке, повтор отклоняется.
func (s *CompletionService) ResubmitOrder(ctx context.Context, id uint64, data dto.ResubmitOrderDTO) (*dto.CompletionResultDTO, error) {
	unlock := s.locks.Lock(requestLockKey(id))

	var (
		req     *entities.Request
		payload *dto.CompletedOrderPayloadDTO
	)
	startedAt := s.submissionStamp()
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		req, err = s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkStatusIn(req, ActionCreateOrder, constants.RequestStatusCompleted); err != nil {
			return err
		}
		if req.HasDocument() {
			return apperrors.NewValidationError("заказ по заявке %d уже зарегистрирован в 1С (документ %s)", id, *req.Document1cID)
		}
		if req.SubmissionInFlight(startedAt, constants.SubmissionMarkerTTL) {
			return apperrors.NewConcurrencyError(id, "заказ уже отправляется в 1С с %s", req.SubmissionStartedAt.Format(time.RFC3339))
		}
		if req.PaymentMethod == nil {
			return apperrors.NewValidationError("у заявки %d не указан способ оплаты", id)
		}

		active, err := s.ledger.ListActive(ctx, tx, id)
		if err != nil {
			return err
		}
		payload, err = s.assembler.Assemble(ctx, req, data.Services, active, *req.PaymentMethod, data.SourceOrderID)
		if err != nil {
			return err
		}

		req.SubmissionStartedAt = &startedAt
		return s.requestRepo.UpdateInTx(ctx, tx, req)
	})
	unlock()
	if err != nil {
		s.logger.Warn("Повторная отправка заказа отклонена", zap.Uint64("requestID", id), zap.Error(err))
		return nil, err
	}

	return s.submitAndPersist(ctx, req, *payload, startedAt), nil
}

// submissionStamp - отметка отправки. Точность как у TIMESTAMPTZ, чтобы сравнение
// после чтения из БД совпадало.
func (s *CompletionService) submissionStamp() time.Time {
	return s.now().Truncate(time.Microsecond)
}

func (s *CompletionService) submitAndPersist(ctx context.Context, req *entities.Request, payload dto.CompletedOrderPayloadDTO, startedAt time.Time) *dto.CompletionResultDTO {
	submission := s.assembler.Submit(ctx, payload)
	result := &dto.CompletionResultDTO{Request: req, Submission: submission}

	updated, err := s.finishSubmission(ctx, req.ID, submission, startedAt)
	if updated != nil {
		result.Request = updated
	}
	if err != nil && submission.Success {
		s.logger.Error("Документ 1С создан, но не сохранён в заявке",
			zap.Uint64("requestID", req.ID), zap.Stringp("document1cId", submission.Document1cID), zap.Error(err))
		result.Submission.Message += fmt.Sprintf(". Не удалось сохранить документ в заявке: %v", err)
		result.Submission.Err = err
	} else if err != nil {
		s.logger.Error("Не удалось снять отметку отправки", zap.Uint64("requestID", req.ID), zap.Error(err))
	}
	return result
}

// finishSubmission снимает отметку отправки и при успехе сохраняет ссылку на документ.
// Отметку снимает только та отправка, которая её поставила.
func (s *CompletionService) finishSubmission(ctx context.Context, id uint64, submission dto.SubmissionResultDTO, startedAt time.Time) (*entities.Request, error) {
	unlock := s.locks.Lock(requestLockKey(id))
	defer unlock()

	var (
		updated     *entities.Request
		conflictErr error
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = req

		changed := false
		if req.SubmissionStartedAt != nil && req.SubmissionStartedAt.Equal(startedAt) {
			req.SubmissionStartedAt = nil
			changed = true
		}

		if submission.Success {
			switch {
			case req.Status != constants.RequestStatusCompleted && req.Status != constants.RequestStatusPaid:
				conflictErr = apperrors.NewConcurrencyError(id, "статус изменился на '%s' до сохранения документа", req.Status)
			case req.HasDocument():
				conflictErr = apperrors.NewConcurrencyError(id, "документ %s уже сохранён", *req.Document1cID)
			default:
				req.Document1cID = submission.Document1cID
				req.Document1cNumber = submission.Document1cNumber
				changed = true
			}
		}

		if !changed {
			return nil
		}
		if err := s.requestRepo.UpdateInTx(ctx, tx, req); err != nil {
			return err
		}
		if submission.Success && conflictErr == nil {
			batch := newHistoryBatch(ctx, s.historyRepo, id)
			return batch.add(ctx, tx, constants.HistoryEventOrderSubmitted, nil, submission.Document1cNumber, submission.Document1cID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, conflictErr
}
