// pkg/utils/context.go

package utils

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"service-route/pkg/contextkeys"
	apperrors "service-route/pkg/errors"
)

func ContextWithTimeout(ctx echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request().Context(), timeout)
}

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetUserRoleFromCtx(ctx context.Context) (string, error) {
	role, ok := ctx.Value(contextkeys.UserRoleKey).(string)
	if !ok || role == "" {
		return "", apperrors.ErrForbidden
	}
	return role, nil
}

// ActorIDFromCtx - id пользователя, если он есть в контексте. Для истории.
func ActorIDFromCtx(ctx context.Context) *uint64 {
	userID, err := GetUserIDFromCtx(ctx)
	if err != nil {
		return nil
	}
	return &userID
}
