package dto

type ReservePartItemDTO struct {
	PartID   uint64 `json:"partId" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type CreateReservePartsDTO struct {
	Items []ReservePartItemDTO `json:"items" validate:"required,min=1,dive"`
}
