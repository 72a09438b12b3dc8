package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-route/internal/authz"
	"service-route/pkg/contextkeys"
	apperrors "service-route/pkg/errors"
	"service-route/pkg/service"
	"service-route/pkg/utils"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	gatekeeper *authz.Gatekeeper
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, gatekeeper *authz.Gatekeeper, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		gatekeeper: gatekeeper,
		logger:     logger,
	}
}

// Auth - это основная функция middleware.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// 1. Извлекаем токен из заголовка
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		// 2. Проверяем формат заголовка "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		// 3. Валидируем токен
		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		// 4. Записываем UserID и роль в контекст запроса
		ctx := context.WithValue(c.Request().Context(), contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.UserRoleKey, claims.Role)
		c.SetRequest(c.Request().WithContext(ctx))

		m.logger.Debug("AuthMiddleware: Пользователь успешно аутентифицирован",
			zap.Uint64("userID", claims.UserID), zap.String("role", claims.Role))

		return next(c)
	}
}

// RequirePermission пропускает дальше, только если у роли есть право.
// Проверка по конкретной заявке выполняется в контроллере.
func (m *AuthMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqCtx := c.Request().Context()
			userID, err := utils.GetUserIDFromCtx(reqCtx)
			if err != nil {
				return utils.ErrorResponse(c, err, m.logger)
			}
			role, err := utils.GetUserRoleFromCtx(reqCtx)
			if err != nil {
				return utils.ErrorResponse(c, err, m.logger)
			}

			if !m.gatekeeper.Can(authz.Context{ActorID: userID, Role: role}, permission) {
				m.logger.Warn("Доступ запрещён",
					zap.Uint64("userID", userID), zap.String("role", role), zap.String("permission", permission))
				return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
			}
			return next(c)
		}
	}
}
