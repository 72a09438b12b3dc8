package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-route/internal/dto"
	"service-route/internal/entities"
	"service-route/internal/repositories"
	"service-route/pkg/constants"
	apperrors "service-route/pkg/errors"
	"service-route/pkg/keylock"
	"service-route/pkg/types"
	"service-route/pkg/utils"
)

type RequestServiceInterface interface {
	CreateRequest(ctx context.Context, data dto.CreateRequestDTO) (*dto.RequestViewDTO, error)
	FindRequest(ctx context.Context, id uint64) (*entities.RequestDetails, error)
	GetRequest(ctx context.Context, id uint64) (*dto.RequestViewDTO, error)
	GetRequests(ctx context.Context, filter types.Filter) ([]dto.RequestViewDTO, uint64, error)
	AssignEngineer(ctx context.Context, id uint64, engineerID uint64) (*entities.Request, error)
	StartWork(ctx context.Context, id uint64) (*entities.Request, error)
	CancelRequest(ctx context.Context, id uint64, comment *string) (*entities.Request, error)
	AdminUpdate(ctx context.Context, id uint64, data dto.AdminUpdateRequestDTO) (*entities.Request, error)
}

type RequestService struct {
	txManager   repositories.TxManagerInterface
	requestRepo repositories.RequestRepositoryInterface
	reserveRepo repositories.ReservePartRepositoryInterface
	historyRepo repositories.RequestHistoryRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	catalogRepo repositories.CatalogRepositoryInterface
	locks       *keylock.KeyedMutex
	logger      *zap.Logger
}

func NewRequestService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	reserveRepo repositories.ReservePartRepositoryInterface,
	historyRepo repositories.RequestHistoryRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	catalogRepo repositories.CatalogRepositoryInterface,
	locks *keylock.KeyedMutex,
	logger *zap.Logger,
) RequestServiceInterface {
	return &RequestService{
		txManager:   txManager,
		requestRepo: requestRepo,
		reserveRepo: reserveRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		catalogRepo: catalogRepo,
		locks:       locks,
		logger:      logger.Named("request_service"),
	}
}

func (s *RequestService) CreateRequest(ctx context.Context, data dto.CreateRequestDTO) (*dto.RequestViewDTO, error) {
	customerRef := strings.TrimSpace(data.CustomerRef)
	address := strings.TrimSpace(data.Address)
	if customerRef == "" || address == "" {
		return nil, apperrors.NewValidationError("клиент и адрес обязательны")
	}

	if data.EquipmentTypeID != nil {
		if _, err := s.catalogRepo.FindEquipmentType(ctx, *data.EquipmentTypeID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError("тип оборудования %d не найден", *data.EquipmentTypeID)
			}
			return nil, err
		}
	}

	request := &entities.Request{
		CustomerRef:         customerRef,
		Address:             address,
		Status:              constants.RequestStatusNew,
		EquipmentTypeID:     data.EquipmentTypeID,
		CustomEquipmentType: data.CustomEquipmentType,
		ProblemDescription:  data.ProblemDescription,
	}

	var created *entities.Request
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = s.requestRepo.CreateInTx(ctx, tx, request)
		if err != nil {
			return err
		}
		status := created.Status.String()
		return newHistoryBatch(ctx, s.historyRepo, created.ID).add(ctx, tx, constants.HistoryEventCreated, nil, &status, nil)
	})
	if err != nil {
		s.logger.Error("не удалось создать заявку", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Заявка создана", zap.Uint64("requestID", created.ID), zap.String("customer", created.CustomerRef))
	return s.GetRequest(ctx, created.ID)
}

func (s *RequestService) FindRequest(ctx context.Context, id uint64) (*entities.RequestDetails, error) {
	return s.requestRepo.FindDetailsByID(ctx, id)
}

func (s *RequestService) GetRequest(ctx context.Context, id uint64) (*dto.RequestViewDTO, error) {
	details, err := s.requestRepo.FindDetailsByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reservations, err := s.reserveRepo.ListByRequest(ctx, nil, id, true)
	if err != nil {
		return nil, err
	}

	view := dto.NewRequestView(*details, AvailableActions(&details.Request))
	view.Reservations = reservations
	return &view, nil
}

func (s *RequestService) GetRequests(ctx context.Context, filter types.Filter) ([]dto.RequestViewDTO, uint64, error) {
	items, total, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	views := make([]dto.RequestViewDTO, 0, len(items))
	for i := range items {
		views = append(views, dto.NewRequestView(items[i], AvailableActions(&items[i].Request)))
	}
	return views, total, nil
}

func (s *RequestService) AssignEngineer(ctx context.Context, id uint64, engineerID uint64) (*entities.Request, error) {
	engineer, err := s.userRepo.FindUserByID(ctx, engineerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("инженер %d не найден", engineerID)
		}
		return nil, err
	}
	if engineer.Role != constants.RoleEngineer {
		return nil, apperrors.NewValidationError("пользователь %d не является инженером", engineerID)
	}

	return s.applyTransition(ctx, id, ActionAssign, nil, func(ctx context.Context, tx pgx.Tx, req *entities.Request, batch *historyBatch) error {
		old := utils.PtrToString(req.EngineerID)
		req.EngineerID = &engineer.ID
		newValue := engineer.FullName
		return batch.add(ctx, tx, constants.HistoryEventAssigned, &old, &newValue, nil)
	})
}

func (s *RequestService) StartWork(ctx context.Context, id uint64) (*entities.Request, error) {
	return s.applyTransition(ctx, id, ActionStart, nil, nil)
}

// CancelRequest отменяет заявку и закрывает все её активные резервы.
func (s *RequestService) CancelRequest(ctx context.Context, id uint64, comment *string) (*entities.Request, error) {
	return s.applyTransition(ctx, id, ActionCancel, comment, func(ctx context.Context, tx pgx.Tx, req *entities.Request, batch *historyBatch) error {
		closed, err := s.reserveRepo.CloseByRequestInTx(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if closed > 0 {
			s.logger.Info("Резервы закрыты при отмене", zap.Uint64("requestID", req.ID), zap.Int64("count", closed))
		}
		return nil
	})
}

type transitionHook func(ctx context.Context, tx pgx.Tx, req *entities.Request, batch *historyBatch) error

// applyTransition: блокировка заявки, SELECT FOR UPDATE, проверка перехода, запись и история в одной транзакции.
func (s *RequestService) applyTransition(ctx context.Context, id uint64, action RequestAction, comment *string, hook transitionHook) (*entities.Request, error) {
	unlock := s.locks.Lock(requestLockKey(id))
	defer unlock()

	var result *entities.Request
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}

		target, err := CheckTransition(req, action)
		if err != nil {
			return err
		}

		batch := newHistoryBatch(ctx, s.historyRepo, id)
		if hook != nil {
			if err := hook(ctx, tx, req, batch); err != nil {
				return err
			}
		}

		oldStatus := req.Status.String()
		req.Status = target
		if err := s.requestRepo.UpdateInTx(ctx, tx, req); err != nil {
			return err
		}

		newStatus := target.String()
		if err := batch.add(ctx, tx, constants.HistoryEventStatusChanged, &oldStatus, &newStatus, comment); err != nil {
			return err
		}

		result = req
		return nil
	})
	if err != nil {
		s.logger.Warn("Переход статуса отклонён",
			zap.Uint64("requestID", id), zap.String("action", string(action)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Статус заявки изменён",
		zap.Uint64("requestID", id), zap.String("action", string(action)), zap.String("status", result.Status.String()))
	return result, nil
}

// AdminUpdate перезаписывает поля заявки без проверки графа статусов.
// Право requests:admin проверяет HTTP-слой.
func (s *RequestService) AdminUpdate(ctx context.Context, id uint64, data dto.AdminUpdateRequestDTO) (*entities.Request, error) {
	var newStatus *constants.RequestStatus
	if data.Status.Valid {
		status := constants.RequestStatus(data.Status.String)
		if !status.IsValid() {
			return nil, apperrors.NewValidationError("неизвестный статус: %s", data.Status.String)
		}
		newStatus = &status
	}

	if data.ClearEngineer && data.EngineerID.Valid {
		return nil, apperrors.NewValidationError("нельзя одновременно назначить и снять инженера")
	}

	if data.EngineerID.Valid {
		engineer, err := s.userRepo.FindUserByID(ctx, uint64(data.EngineerID.Int64))
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError("инженер %d не найден", data.EngineerID.Int64)
			}
			return nil, err
		}
		if engineer.Role != constants.RoleEngineer {
			return nil, apperrors.NewValidationError("пользователь %d не является инженером", engineer.ID)
		}
	}

	if data.EquipmentTypeID.Valid {
		if _, err := s.catalogRepo.FindEquipmentType(ctx, uint64(data.EquipmentTypeID.Int64)); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError("тип оборудования %d не найден", data.EquipmentTypeID.Int64)
			}
			return nil, err
		}
	}

	unlock := s.locks.Lock(requestLockKey(id))
	defer unlock()

	var result *entities.Request
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}

		var changes []string
		oldStatus := req.Status.String()

		if newStatus != nil && *newStatus != req.Status {
			changes = append(changes, fmt.Sprintf("статус: %s -> %s", req.Status, *newStatus))
			req.Status = *newStatus
		}
		if data.EngineerID.Valid {
			engineerID := uint64(data.EngineerID.Int64)
			if utils.DiffPtr(req.EngineerID, &engineerID) {
				changes = append(changes, fmt.Sprintf("инженер: %s -> %d", utils.PtrToString(req.EngineerID), engineerID))
				req.EngineerID = &engineerID
			}
		}
		if data.ClearEngineer && req.EngineerID != nil {
			changes = append(changes, fmt.Sprintf("инженер: %d -> не назначен", *req.EngineerID))
			req.EngineerID = nil
		}
		if data.CustomerRef.Valid && strings.TrimSpace(data.CustomerRef.String) != req.CustomerRef {
			changes = append(changes, fmt.Sprintf("клиент: %s -> %s", req.CustomerRef, data.CustomerRef.String))
			req.CustomerRef = strings.TrimSpace(data.CustomerRef.String)
		}
		if data.Address.Valid && strings.TrimSpace(data.Address.String) != req.Address {
			changes = append(changes, "адрес изменён")
			req.Address = strings.TrimSpace(data.Address.String)
		}
		if data.EquipmentTypeID.Valid {
			typeID := uint64(data.EquipmentTypeID.Int64)
			if utils.DiffPtr(req.EquipmentTypeID, &typeID) {
				changes = append(changes, "тип оборудования изменён")
				req.EquipmentTypeID = &typeID
			}
		}
		if data.CustomEquipmentType.Valid {
			req.CustomEquipmentType = utils.ToPtr(data.CustomEquipmentType.String)
		}
		if data.ProblemDescription.Valid {
			req.ProblemDescription = utils.ToPtr(data.ProblemDescription.String)
		}

		if req.HasDocument() && req.Status != constants.RequestStatusCompleted && req.Status != constants.RequestStatusPaid {
			return apperrors.NewValidationError(
				"у заявки есть документ 1С, статус '%s' недопустим", req.Status)
		}
		if req.CustomerRef == "" || req.Address == "" {
			return apperrors.NewValidationError("клиент и адрес обязательны")
		}

		if err := s.requestRepo.UpdateInTx(ctx, tx, req); err != nil {
			return err
		}

		batch := newHistoryBatch(ctx, s.historyRepo, id)
		summary := strings.Join(changes, "; ")
		if err := batch.add(ctx, tx, constants.HistoryEventAdminUpdate, nil, &summary, data.Comment); err != nil {
			return err
		}
		if req.Status.String() != oldStatus {
			newValue := req.Status.String()
			if err := batch.add(ctx, tx, constants.HistoryEventStatusChanged, &oldStatus, &newValue, nil); err != nil {
				return err
			}
		}

		result = req
		return nil
	})
	if err != nil {
		s.logger.Warn("Административная правка отклонена", zap.Uint64("requestID", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Заявка изменена администратором", zap.Uint64("requestID", id))
	return result, nil
}
