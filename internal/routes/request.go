package routes

import (
	"github.com/labstack/echo/v4"

	"service-route/internal/authz"
	"service-route/internal/controllers"
	"service-route/pkg/middleware"
)

func runRequestRouter(
	secureGroup *echo.Group,
	requestController *controllers.RequestController,
	reservePartController *controllers.ReservePartController,
	authMW *middleware.AuthMiddleware,
) {
	requests := secureGroup.Group("/requests")
	{
		requests.GET("", requestController.GetRequests, authMW.RequirePermission(authz.RequestsView))
		requests.POST("", requestController.CreateRequest, authMW.RequirePermission(authz.RequestsCreate))
		requests.GET("/:id", requestController.FindRequest, authMW.RequirePermission(authz.RequestsView))
		requests.PUT("/:id", requestController.AdminUpdate, authMW.RequirePermission(authz.RequestsAdmin))
		requests.GET("/:id/history", requestController.GetHistory, authMW.RequirePermission(authz.RequestsView))

		requests.POST("/:id/assign", requestController.AssignEngineer, authMW.RequirePermission(authz.RequestsAssign))
		requests.POST("/:id/start", requestController.StartWork, authMW.RequirePermission(authz.RequestsWork))
		requests.POST("/:id/cancel", requestController.CancelRequest, authMW.RequirePermission(authz.RequestsCancel))

		requests.GET("/:id/reserve-parts", reservePartController.GetReserveParts, authMW.RequirePermission(authz.RequestsView))
		requests.POST("/:id/reserve-parts", reservePartController.ReserveParts, authMW.RequirePermission(authz.RequestsWork))
		requests.DELETE("/:id/reserve-parts/:reservePartId", reservePartController.RemoveReservePart, authMW.RequirePermission(authz.RequestsWork))
	}
}
