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

type RequestController struct {
	requestService services.RequestServiceInterface
	historyService services.RequestHistoryServiceInterface
	access         requestAccess
	logger         *zap.Logger
}

func NewRequestController(
	requestService services.RequestServiceInterface,
	historyService services.RequestHistoryServiceInterface,
	gatekeeper *authz.Gatekeeper,
	logger *zap.Logger,
) *RequestController {
	return &RequestController{
		requestService: requestService,
		historyService: historyService,
		access:         requestAccess{requests: requestService, gatekeeper: gatekeeper},
		logger:         logger,
	}
}

func (c *RequestController) GetRequests(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	if err := c.access.scopeFilter(reqCtx, &filter); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, total, err := c.requestService.GetRequests(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return api.SuccessList(ctx, "Заявки успешно получены", res, total, filter.Page, filter.Limit)
}

func (c *RequestController) CreateRequest(ctx echo.Context) error {
	var data dto.CreateRequestDTO
	if err := bindAndValidate(ctx, &data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.CreateRequest(ctx.Request().Context(), data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Заявка успешно создана", res)
}

func (c *RequestController) FindRequest(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	if _, err := c.access.check(reqCtx, id, authz.RequestsView); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.GetRequest(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заявка успешно получена", res)
}

func (c *RequestController) GetHistory(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	if _, err := c.access.check(reqCtx, id, authz.RequestsView); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	timeline, err := c.historyService.GetTimeline(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "История заявки получена", timeline)
}

func (c *RequestController) AssignEngineer(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var data dto.AssignEngineerDTO
	if err := bindAndValidate(ctx, &data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.AssignEngineer(ctx.Request().Context(), id, data.EngineerID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Инженер назначен", res)
}

func (c *RequestController) StartWork(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	if _, err := c.access.check(reqCtx, id, authz.RequestsWork); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.StartWork(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заявка взята в работу", res)
}

func (c *RequestController) CancelRequest(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var data dto.CancelRequestDTO
	if err := bindAndValidate(ctx, &data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.CancelRequest(ctx.Request().Context(), id, data.Comment)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заявка отменена", res)
}

// AdminUpdate - правка администратором в обход графа статусов.
func (c *RequestController) AdminUpdate(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var data dto.AdminUpdateRequestDTO
	if err := bindAndValidate(ctx, &data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.AdminUpdate(ctx.Request().Context(), id, data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заявка обновлена", res)
}
