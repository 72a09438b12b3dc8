package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-route/internal/authz"
	"service-route/internal/controllers"
	"service-route/internal/services"
	"service-route/pkg/middleware"
)

func runLedgerRouter(
	secureGroup *echo.Group,
	ledgerService services.LedgerServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	ledgerController := controllers.NewLedgerController(ledgerService, logger)

	secureGroup.GET("/ledger/nomenclature", ledgerController.GetNomenclature, authMW.RequirePermission(authz.LedgerView))
}
