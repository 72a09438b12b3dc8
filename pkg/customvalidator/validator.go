// Файл: pkg/customvalidator/validators.go

package customvalidator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"service-route/pkg/constants"
)

// RegisterCustomValidations "собирает" все наши кастомные правила валидации
// и регистрирует их в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("payment_method", isPaymentMethod); err != nil {
		return err
	}
	if err := v.RegisterValidation("request_status", isRequestStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("customer_ref", isCustomerRef); err != nil {
		return err
	}
	return nil
}

func isPaymentMethod(fl validator.FieldLevel) bool {
	return constants.PaymentMethod(fl.Field().String()).IsValid()
}

func isRequestStatus(fl validator.FieldLevel) bool {
	return constants.RequestStatus(fl.Field().String()).IsValid()
}

// Клиент указывается телефоном, ИНН или внутренним id: пробелы по краям и пустая строка недопустимы.
func isCustomerRef(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && strings.TrimSpace(s) == s && len(s) <= 64
}
