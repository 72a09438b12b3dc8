package routes

import (
	"github.com/labstack/echo/v4"

	"service-route/internal/authz"
	"service-route/internal/controllers"
	"service-route/pkg/middleware"
)

func runOrderRouter(
	secureGroup *echo.Group,
	orderController *controllers.OrderController,
	authMW *middleware.AuthMiddleware,
) {
	requests := secureGroup.Group("/requests")
	{
		requests.POST("/:id/complete", orderController.CompleteRequest, authMW.RequirePermission(authz.RequestsWork))
		requests.POST("/:id/order", orderController.ResubmitOrder, authMW.RequirePermission(authz.RequestsWork))
		requests.POST("/:id/confirm-cash-payment", orderController.ConfirmCashPayment, authMW.RequirePermission(authz.PaymentsConfirm))
		requests.POST("/:id/check-payment", orderController.CheckPayment, authMW.RequirePermission(authz.PaymentsConfirm))
	}
}
