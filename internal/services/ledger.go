package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"service-route/internal/dto"
)

// LedgerGateway - API учётной системы 1С. Реализация: internal/integrations/1c.Client.
type LedgerGateway interface {
	GetNomenclature(ctx context.Context) ([]dto.NomenclatureDTO, error)
	SendCompletedOrder(ctx context.Context, payload dto.CompletedOrderPayloadDTO) (*dto.LedgerDocumentDTO, error)
	PaymentStatus(ctx context.Context, documentID string) (*dto.PaymentStatusDTO, error)
	ConfirmCashPayment(ctx context.Context, documentID string) (*dto.PaymentStatusDTO, error)
}

type LedgerServiceInterface interface {
	GetNomenclature(ctx context.Context) ([]dto.NomenclatureDTO, error)
}

type LedgerService struct {
	gateway LedgerGateway
	timeout time.Duration
	logger  *zap.Logger
}

func NewLedgerService(gateway LedgerGateway, timeout time.Duration, logger *zap.Logger) LedgerServiceInterface {
	return &LedgerService{gateway: gateway, timeout: timeout, logger: logger.Named("ledger_service")}
}

// GetNomenclature - справочник номенклатуры 1С для операторов, без сохранения в каталог.
func (s *LedgerService) GetNomenclature(ctx context.Context) ([]dto.NomenclatureDTO, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Info("Запрос номенклатуры из 1С")
	items, err := s.gateway.GetNomenclature(ctx)
	if err != nil {
		s.logger.Error("Не удалось получить номенклатуру", zap.Error(err))
		return nil, err
	}
	if items == nil {
		items = []dto.NomenclatureDTO{}
	}
	return items, nil
}
