package dto

import (
	"service-route/internal/entities"
	"service-route/pkg/constants"
)

type ServiceLineDTO struct {
	ServiceID uint64  `json:"serviceId" validate:"required,gt=0"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
}

type UsedReservationDTO struct {
	ReservePartID uint64 `json:"reservePartId" validate:"required,gt=0"`
	UsedQuantity  int    `json:"usedQuantity" validate:"gte=0"`
}

type NewPartDTO struct {
	PartID   uint64 `json:"partId" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// CompleteRequestDTO - всё, что инженер передаёт при завершении работ.
type CompleteRequestDTO struct {
	PaymentMethod        constants.PaymentMethod `json:"paymentMethod" validate:"required,payment_method"`
	SourceOrderID        *string                 `json:"sourceOrderId,omitempty" validate:"omitempty,max=64"`
	Services             []ServiceLineDTO        `json:"services" validate:"required,min=1,dive"`
	Reservations         []UsedReservationDTO    `json:"reservations,omitempty" validate:"omitempty,dive"`
	NewParts             []NewPartDTO            `json:"newParts,omitempty" validate:"omitempty,dive"`
	RemoveReservePartIDs []uint64                `json:"removeReservePartIds,omitempty" validate:"omitempty,dive,gt=0"`
}

// ResubmitOrderDTO - повторная отправка заказа для завершённой заявки без документа 1С.
type ResubmitOrderDTO struct {
	SourceOrderID *string          `json:"sourceOrderId,omitempty" validate:"omitempty,max=64"`
	Services      []ServiceLineDTO `json:"services" validate:"required,min=1,dive"`
}

// SubmissionResultDTO - итог отправки заказа во внешнюю учётную систему.
// Ошибка транспорта не прерывает операцию, а возвращается здесь.
type SubmissionResultDTO struct {
	Success          bool    `json:"success"`
	Document1cID     *string `json:"document1cId,omitempty"`
	Document1cNumber *string `json:"document1cNumber,omitempty"`
	Message          string  `json:"message"`
	Err              error   `json:"-"`
}

type CompletionResultDTO struct {
	Request    *entities.Request   `json:"request"`
	Submission SubmissionResultDTO `json:"submission"`
}
