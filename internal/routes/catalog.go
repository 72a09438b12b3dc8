package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-route/internal/authz"
	"service-route/internal/controllers"
	"service-route/internal/services"
	"service-route/pkg/middleware"
)

func runCatalogRouter(
	secureGroup *echo.Group,
	catalogService services.CatalogServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	catalogController := controllers.NewCatalogController(catalogService, logger)
	view := authMW.RequirePermission(authz.RequestsView)

	secureGroup.GET("/engineers", catalogController.GetEngineers, view)

	catalog := secureGroup.Group("/catalog")
	catalog.GET("/parts", catalogController.GetParts, view)
	catalog.GET("/parts/:id", catalogController.GetPart, view)
	catalog.GET("/services", catalogController.GetServices, view)
	catalog.GET("/services/:id", catalogController.GetService, view)
}
