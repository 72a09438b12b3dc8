package errors

import (
	"errors"
	"fmt"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")

	// Авторизация
	ErrEmptyAuthHeader   = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader = fmt.Errorf("неверный формат заголовка авторизации")
	ErrForbidden         = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// HttpError - ошибка с готовым HTTP-кодом и пользовательским сообщением.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

// InvalidStateTransitionError - переход не разрешён из текущего статуса заявки.
// Состояние заявки при этом не меняется.
type InvalidStateTransitionError struct {
	RequestID uint64
	From      string
	Action    string
	To        string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("заявка %d: действие '%s' недопустимо в статусе '%s' (целевой статус '%s')",
		e.RequestID, e.Action, e.From, e.To)
}

func NewInvalidStateTransition(requestID uint64, from, action, to string) error {
	return &InvalidStateTransitionError{RequestID: requestID, From: from, Action: action, To: to}
}

type ValidationKind string

const (
	KindValidation  ValidationKind = "validation"
	KindPricing     ValidationKind = "pricing"
	KindCatalogLink ValidationKind = "catalog_link"
	KindQuantity    ValidationKind = "quantity"
	KindStock       ValidationKind = "stock"
)

// ValidationError блокирует операцию целиком до любого внешнего вызова.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewPricingError - у позиции каталога нет цены или она не положительная.
func NewPricingError(itemName string) error {
	return &ValidationError{Kind: KindPricing, Message: fmt.Sprintf("цена для '%s' не установлена в 1С", itemName)}
}

// NewCatalogLinkError - у позиции каталога нет идентификатора номенклатуры 1С.
func NewCatalogLinkError(itemName string) error {
	return &ValidationError{Kind: KindCatalogLink, Message: fmt.Sprintf("ID номенклатуры для '%s' не установлен", itemName)}
}

func NewQuantityError(format string, args ...interface{}) error {
	return &ValidationError{Kind: KindQuantity, Message: fmt.Sprintf(format, args...)}
}

func NewStockError(format string, args ...interface{}) error {
	return &ValidationError{Kind: KindStock, Message: fmt.Sprintf(format, args...)}
}

func IsValidationKind(err error, kind ValidationKind) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr) && vErr.Kind == kind
}

// ExternalServiceError - сетевая ошибка, таймаут или не-2xx ответ от 1С.
type ExternalServiceError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("1С: %s: статус %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("1С: %s: статус %d: %s", e.Op, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("1С: %s: %v", e.Op, e.Err)
	}
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// ConcurrencyError - заявку изменила конкурирующая операция между чтением и записью.
type ConcurrencyError struct {
	RequestID uint64
	Message   string
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("заявка %d была изменена параллельно: %s", e.RequestID, e.Message)
}

func NewConcurrencyError(requestID uint64, format string, args ...interface{}) error {
	return &ConcurrencyError{RequestID: requestID, Message: fmt.Sprintf(format, args...)}
}

// WrongPaymentPathError - способ подтверждения оплаты не соответствует способу оплаты заявки.
type WrongPaymentPathError struct {
	RequestID     uint64
	PaymentMethod string
	Path          string
}

func (e *WrongPaymentPathError) Error() string {
	return fmt.Sprintf("заявка %d: способ оплаты '%s' не подтверждается через '%s'", e.RequestID, e.PaymentMethod, e.Path)
}
