package entities

import (
	"time"

	"service-route/pkg/constants"
)

type Request struct {
	ID                  uint64                   `json:"id" db:"id"`
	CustomerRef         string                   `json:"customerId" db:"customer_id"`
	Address             string                   `json:"address" db:"address"`
	Status              constants.RequestStatus  `json:"status" db:"status"`
	EngineerID          *uint64                  `json:"engineerId,omitempty" db:"engineer_id"`
	EquipmentTypeID     *uint64                  `json:"equipmentTypeId,omitempty" db:"equipment_type_id"`
	CustomEquipmentType *string                  `json:"customEquipmentType,omitempty" db:"custom_equipment_type"`
	ProblemDescription  *string                  `json:"problemDescription,omitempty" db:"problem_description"`
	PaymentMethod       *constants.PaymentMethod `json:"paymentMethod,omitempty" db:"payment_method"`
	Document1cID        *string                  `json:"document1cId,omitempty" db:"document_1c_id"`
	Document1cNumber    *string                  `json:"document1cNumber,omitempty" db:"document_1c_number"`
	SubmissionStartedAt *time.Time               `json:"submissionStartedAt,omitempty" db:"submission_started_at"`
	CreatedAt           time.Time                `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time                `json:"updatedAt" db:"updated_at"`
}

// HasDocument - заказ уже зарегистрирован в 1С.
func (r *Request) HasDocument() bool {
	return r.Document1cID != nil && *r.Document1cID != ""
}

// SubmissionInFlight - заказ сейчас отправляется в 1С и исход ещё не сохранён.
// Отметка старше staleAfter считается брошенной (процесс упал во время отправки).
func (r *Request) SubmissionInFlight(now time.Time, staleAfter time.Duration) bool {
	return r.SubmissionStartedAt != nil && now.Sub(*r.SubmissionStartedAt) < staleAfter
}

// RequestDetails - заявка с подгруженными инженером и типом оборудования.
type RequestDetails struct {
	Request

	EngineerName         *string `json:"engineerName,omitempty" db:"engineer_name"`
	EquipmentTypeName    *string `json:"equipmentTypeName,omitempty" db:"equipment_type_name"`
	EquipmentTypeIsOther bool    `json:"equipmentTypeIsOther" db:"equipment_type_is_other"`
}

// DisplayEquipmentType: для типа "Другое" показываем то, что ввёл оператор.
func (d *RequestDetails) DisplayEquipmentType() string {
	if d.EquipmentTypeIsOther && d.CustomEquipmentType != nil && *d.CustomEquipmentType != "" {
		return *d.CustomEquipmentType
	}
	if d.EquipmentTypeName != nil {
		return *d.EquipmentTypeName
	}
	return "Не указан"
}

func (d *RequestDetails) DisplayPaymentMethod() string {
	if d.PaymentMethod == nil {
		return "Не указан"
	}
	if name, ok := constants.PaymentMethodNames[*d.PaymentMethod]; ok {
		return name
	}
	return string(*d.PaymentMethod)
}
