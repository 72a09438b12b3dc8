package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"service-route/internal/dto"
	"service-route/internal/entities"
	"service-route/internal/repositories"
	"service-route/pkg/constants"
	apperrors "service-route/pkg/errors"
	"service-route/pkg/utils"
)

type OrderAssemblerInterface interface {
	Assemble(ctx context.Context, req *entities.Request, services []dto.ServiceLineDTO,
		reservations []entities.ReservePartDetails, method constants.PaymentMethod, sourceOrderID *string) (*dto.CompletedOrderPayloadDTO, error)
	Submit(ctx context.Context, payload dto.CompletedOrderPayloadDTO) dto.SubmissionResultDTO
}

type OrderAssembler struct {
	catalogRepo  repositories.CatalogRepositoryInterface
	customerRepo repositories.CustomerRepositoryInterface
	gateway      LedgerGateway
	timeout      time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

func NewOrderAssembler(
	catalogRepo repositories.CatalogRepositoryInterface,
	customerRepo repositories.CustomerRepositoryInterface,
	gateway LedgerGateway,
	timeout time.Duration,
	logger *zap.Logger,
) *OrderAssembler {
	return &OrderAssembler{
		catalogRepo:  catalogRepo,
		customerRepo: customerRepo,
		gateway:      gateway,
		timeout:      timeout,
		now:          time.Now,
		logger:       logger.Named("order_assembler"),
	}
}

// Assemble собирает заказ для 1С. Ошибки услуг прерывают сборку,
// материалы без цены или кода номенклатуры пропускаются с предупреждением.
func (a *OrderAssembler) Assemble(
	ctx context.Context,
	req *entities.Request,
	services []dto.ServiceLineDTO,
	reservations []entities.ReservePartDetails,
	method constants.PaymentMethod,
	sourceOrderID *string,
) (*dto.CompletedOrderPayloadDTO, error) {
	if err := checkStatusIn(req, ActionCreateOrder, constants.RequestStatusInProgress, constants.RequestStatusCompleted); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, apperrors.NewValidationError("неизвестный способ оплаты: %s", method)
	}

	serviceLines := make([]dto.CompletedOrderItemDTO, 0, len(services))
	for _, line := range services {
		item, err := a.serviceLine(ctx, line)
		if err != nil {
			return nil, err
		}
		serviceLines = append(serviceLines, item)
	}
	if len(serviceLines) == 0 {
		return nil, apperrors.NewValidationError("заказ должен содержать хотя бы одну услугу")
	}

	materials := make([]dto.CompletedOrderItemDTO, 0, len(reservations))
	for _, reserve := range reservations {
		if !reserve.IsActive() || reserve.UsedQuantity <= 0 {
			continue
		}
		if reserve.PartPrice == nil || *reserve.PartPrice <= 0 || utils.SafeDeref(reserve.NomenclatureID) == "" {
			a.logger.Warn("Материал пропущен: нет цены или кода номенклатуры",
				zap.Uint64("requestID", req.ID), zap.Uint64("reservePartID", reserve.ID), zap.String("part", reserve.PartName))
			continue
		}
		materials = append(materials, orderLine(*reserve.NomenclatureID, decimal.NewFromInt(int64(reserve.UsedQuantity)), *reserve.PartPrice))
	}

	// Постоянный номер на заявку: повторная отправка не плодит заказы в 1С.
	orderID := utils.SafeDeref(sourceOrderID)
	if orderID == "" {
		orderID = fmt.Sprintf("REQ-%d", req.ID)
	}

	payload := &dto.CompletedOrderPayloadDTO{
		SourceOrderID:  orderID,
		CompletionDate: a.now().Format(constants.LedgerDateTimeLayout),
		CustomerTaxID:  a.customerIdentifier(ctx, req.CustomerRef),
		Services:       serviceLines,
		Materials:      materials,
		PaymentMethod:  string(method),
		IsPaid:         false,
	}

	a.logger.Info("Заказ собран",
		zap.Uint64("requestID", req.ID), zap.String("sourceOrderId", orderID),
		zap.Int("services", len(serviceLines)), zap.Int("materials", len(materials)))
	return payload, nil
}

func (a *OrderAssembler) serviceLine(ctx context.Context, line dto.ServiceLineDTO) (dto.CompletedOrderItemDTO, error) {
	if line.Quantity <= 0 {
		return dto.CompletedOrderItemDTO{}, apperrors.NewQuantityError("количество услуги %d должно быть больше нуля", line.ServiceID)
	}

	service, err := a.catalogRepo.FindService(ctx, line.ServiceID)
	if err != nil {
		return dto.CompletedOrderItemDTO{}, fmt.Errorf("услуга %d: %w", line.ServiceID, err)
	}
	if service.Price == nil || *service.Price <= 0 {
		return dto.CompletedOrderItemDTO{}, apperrors.NewPricingError(service.Name)
	}
	if utils.SafeDeref(service.NomenclatureID) == "" {
		return dto.CompletedOrderItemDTO{}, apperrors.NewCatalogLinkError(service.Name)
	}

	return orderLine(*service.NomenclatureID, decimal.NewFromFloat(line.Quantity), *service.Price), nil
}

func orderLine(nomenclatureID string, quantity decimal.Decimal, price float64) dto.CompletedOrderItemDTO {
	unitPrice := decimal.NewFromFloat(price)
	total := quantity.Mul(unitPrice)

	qty, _ := quantity.Float64()
	unit, _ := unitPrice.Float64()
	sum, _ := total.Float64()
	return dto.CompletedOrderItemDTO{
		NomenclatureID: nomenclatureID,
		Quantity:       qty,
		PricePerUnit:   unit,
		TotalPrice:     sum,
	}
}

// customerIdentifier: телефон клиента по номеру, затем по числовому id, иначе строка как есть.
func (a *OrderAssembler) customerIdentifier(ctx context.Context, customerRef string) string {
	if phone := utils.NormalizePhoneNumber(customerRef); phone != "" {
		customer, err := a.customerRepo.FindByPhone(ctx, phone)
		if err == nil {
			return customer.PhoneNumber
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			a.logger.Warn("Ошибка поиска клиента по телефону", zap.String("customerRef", customerRef), zap.Error(err))
		}
	}

	if id, err := strconv.ParseUint(customerRef, 10, 64); err == nil {
		customer, err := a.customerRepo.FindByID(ctx, id)
		if err == nil {
			return customer.PhoneNumber
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			a.logger.Warn("Ошибка поиска клиента по id", zap.String("customerRef", customerRef), zap.Error(err))
		}
	}

	return customerRef
}

// Submit отправляет заказ в 1С. Ошибка транспорта не возвращается, а попадает в результат.
func (a *OrderAssembler) Submit(ctx context.Context, payload dto.CompletedOrderPayloadDTO) dto.SubmissionResultDTO {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	doc, err := a.gateway.SendCompletedOrder(ctx, payload)
	if err != nil {
		a.logger.Error("Заказ не отправлен в 1С", zap.String("sourceOrderId", payload.SourceOrderID), zap.Error(err))
		return dto.SubmissionResultDTO{
			Success: false,
			Message: fmt.Sprintf("Не удалось отправить заказ в 1С: %v", err),
			Err:     err,
		}
	}

	message := fmt.Sprintf("Заказ зарегистрирован в 1С, документ №%s", doc.Document1cNumber)
	if doc.Message != "" {
		message += ". " + doc.Message
	}
	return dto.SubmissionResultDTO{
		Success:          true,
		Document1cID:     utils.ToPtr(doc.Document1cID),
		Document1cNumber: utils.ToPtr(doc.Document1cNumber),
		Message:          message,
	}
}
