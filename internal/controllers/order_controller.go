package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-route/internal/authz"
	"service-route/internal/dto"
	"service-route/internal/services"
	"service-route/pkg/api"
	"service-route/pkg/utils"
)

// OrderController - завершение работ, заказ в 1С и оплата.
type OrderController struct {
	completionService services.CompletionServiceInterface
	paymentService    services.PaymentServiceInterface
	access            requestAccess
	logger            *zap.Logger
}

func NewOrderController(
	completionService services.CompletionServiceInterface,
	paymentService services.PaymentServiceInterface,
	requestService services.RequestServiceInterface,
	gatekeeper *authz.Gatekeeper,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		completionService: completionService,
		paymentService:    paymentService,
		access:            requestAccess{requests: requestService, gatekeeper: gatekeeper},
		logger:            logger,
	}
}

// CompleteRequest завершает работы. Ошибка отправки в 1С не делает ответ неуспешным:
// заявка уже выполнена, а итог отправки лежит в submission.
func (c *OrderController) CompleteRequest(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var data dto.CompleteRequestDTO
	if err := bindAndValidate(ctx, &data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	if _, err := c.access.check(reqCtx, id, authz.RequestsWork); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.completionService.CompleteRequest(reqCtx, id, data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, res.Submission.Message, res)
}

func (c *OrderController) ResubmitOrder(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var data dto.ResubmitOrderDTO
	if err := bindAndValidate(ctx, &data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	if _, err := c.access.check(reqCtx, id, authz.RequestsWork); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.completionService.ResubmitOrder(reqCtx, id, data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, res.Submission.Message, res)
}

func (c *OrderController) ConfirmCashPayment(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	if _, err := c.access.check(reqCtx, id, authz.PaymentsConfirm); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.paymentService.ConfirmCashPayment(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, res.Message, res)
}

func (c *OrderController) CheckPayment(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	if _, err := c.access.check(reqCtx, id, authz.PaymentsConfirm); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.paymentService.CheckPayment(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, res.Message, res)
}
