package controllers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-route/internal/services"
	"service-route/pkg/api"
	"service-route/pkg/utils"
)

type LedgerController struct {
	ledgerService services.LedgerServiceInterface
	logger        *zap.Logger
}

func NewLedgerController(ledgerService services.LedgerServiceInterface, logger *zap.Logger) *LedgerController {
	return &LedgerController{ledgerService: ledgerService, logger: logger}
}

func (c *LedgerController) GetNomenclature(ctx echo.Context) error {
	res, err := c.ledgerService.GetNomenclature(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Номенклатура получена", res, uint64(len(res)), 1, len(res))
}
