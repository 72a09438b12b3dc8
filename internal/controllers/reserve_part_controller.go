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

type ReservePartController struct {
	reservationService services.ReservationServiceInterface
	access             requestAccess
	logger             *zap.Logger
}

func NewReservePartController(
	reservationService services.ReservationServiceInterface,
	requestService services.RequestServiceInterface,
	gatekeeper *authz.Gatekeeper,
	logger *zap.Logger,
) *ReservePartController {
	return &ReservePartController{
		reservationService: reservationService,
		access:             requestAccess{requests: requestService, gatekeeper: gatekeeper},
		logger:             logger,
	}
}

// GetReserveParts отдаёт резервы заявки. ?all=true включает закрытые.
func (c *ReservePartController) GetReserveParts(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	if _, err := c.access.check(reqCtx, id, authz.RequestsView); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	list := c.reservationService.ListActive
	if ctx.QueryParam("all") == "true" {
		list = c.reservationService.ListAll
	}
	res, err := list(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Резервы получены", res, uint64(len(res)), 1, len(res))
}

func (c *ReservePartController) ReserveParts(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var data dto.CreateReservePartsDTO
	if err := bindAndValidate(ctx, &data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	if _, err := c.access.check(reqCtx, id, authz.RequestsWork); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.ReserveMany(reqCtx, id, data.Items)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Запчасти зарезервированы", res)
}

func (c *ReservePartController) RemoveReservePart(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	reservePartID, err := utils.ParseIDParam(ctx, "reservePartId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	if _, err := c.access.check(reqCtx, id, authz.RequestsWork); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.reservationService.Remove(reqCtx, id, reservePartID); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "Резерв удалён", nil)
}
