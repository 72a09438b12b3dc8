package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "service-route/pkg/errors"
)

// bindAndValidate читает JSON тела и прогоняет его через валидатор echo.
func bindAndValidate(ctx echo.Context, data interface{}) error {
	if err := ctx.Bind(data); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Некорректное тело запроса", err, nil)
	}
	return ctx.Validate(data)
}
