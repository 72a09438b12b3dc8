package dto

import (
	"github.com/aarondl/null/v8"

	"service-route/internal/entities"
	"service-route/pkg/constants"
)

type CreateRequestDTO struct {
	CustomerRef         string  `json:"customerId" validate:"required,customer_ref"`
	Address             string  `json:"address" validate:"required,min=3,max=500"`
	EquipmentTypeID     *uint64 `json:"equipmentTypeId,omitempty" validate:"omitempty,gt=0"`
	CustomEquipmentType *string `json:"customEquipmentType,omitempty" validate:"omitempty,max=255"`
	ProblemDescription  *string `json:"problemDescription,omitempty" validate:"omitempty,max=2000"`
}

type AssignEngineerDTO struct {
	EngineerID uint64 `json:"engineerId" validate:"required,gt=0"`
}

type CancelRequestDTO struct {
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

// AdminUpdateRequestDTO - правка заявки администратором в обход графа статусов.
// Меняются только переданные поля. Снять инженера - clearEngineer: true.
type AdminUpdateRequestDTO struct {
	Status              null.String `json:"status" validate:"omitempty,request_status"`
	EngineerID          null.Int64  `json:"engineerId" validate:"omitempty,gt=0"`
	ClearEngineer       bool        `json:"clearEngineer"`
	CustomerRef         null.String `json:"customerId" validate:"omitempty,customer_ref"`
	Address             null.String `json:"address" validate:"omitempty,min=3,max=500"`
	EquipmentTypeID     null.Int64  `json:"equipmentTypeId" validate:"omitempty,gt=0"`
	CustomEquipmentType null.String `json:"customEquipmentType" validate:"omitempty,max=255"`
	ProblemDescription  null.String `json:"problemDescription" validate:"omitempty,max=2000"`
	Comment             *string     `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

// RequestViewDTO - заявка для карточки и списка.
type RequestViewDTO struct {
	entities.RequestDetails

	DisplayEquipmentType string                        `json:"displayEquipmentType"`
	DisplayPaymentMethod string                        `json:"displayPaymentMethod"`
	StatusName           string                        `json:"statusName"`
	AvailableActions     []string                      `json:"availableActions"`
	Reservations         []entities.ReservePartDetails `json:"reservations,omitempty"`
}

func NewRequestView(details entities.RequestDetails, actions []string) RequestViewDTO {
	if actions == nil {
		actions = []string{}
	}
	return RequestViewDTO{
		RequestDetails:       details,
		DisplayEquipmentType: details.DisplayEquipmentType(),
		DisplayPaymentMethod: details.DisplayPaymentMethod(),
		StatusName:           constants.RequestStatusNames[details.Status],
		AvailableActions:     actions,
	}
}
