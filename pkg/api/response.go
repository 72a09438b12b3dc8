package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "service-route/pkg/errors"
)

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Body    T      `json:"body,omitempty"`
}

type ListBody[T any] struct {
	List       []T             `json:"list"`
	Pagination *PaginationMeta `json:"pagination"`
}

type PaginationMeta struct {
	TotalCount uint64 `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// SuccessOne — для возврата одного объекта
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T, total uint64, page, limit int) error {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}

	if list == nil {
		list = make([]T, 0)
	}

	body := ListBody[T]{
		List: list,
		Pagination: &PaginationMeta{
			TotalCount: total,
			TotalPages: totalPages,
			Page:       page,
			Limit:      limit,
		},
	}

	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body:    body,
	})
}

// StatusFromError сопоставляет доменную ошибку с HTTP-кодом.
func StatusFromError(err error) int {
	var (
		httpErr       *apperrors.HttpError
		transitionErr *apperrors.InvalidStateTransitionError
		concurrentErr *apperrors.ConcurrencyError
		wrongPathErr  *apperrors.WrongPaymentPathError
		validationErr *apperrors.ValidationError
		externalErr   *apperrors.ExternalServiceError
		fieldsErr     validator.ValidationErrors
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.As(err, &transitionErr), errors.As(err, &concurrentErr), errors.As(err, &wrongPathErr):
		return http.StatusConflict
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &externalErr):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &fieldsErr), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrUserIDNotFoundInContext):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func ErrorResponse(c echo.Context, err error) error {
	code := StatusFromError(err)
	msg := err.Error()

	// Для HttpError берем только пользовательское сообщение, без code и технических деталей
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		msg = httpErr.Message
	}
	if code == http.StatusInternalServerError {
		msg = "Внутренняя ошибка сервера"
	}

	return c.JSON(code, Response[any]{
		Status:  false,
		Message: msg,
	})
}
