package entities

import (
	"time"

	"service-route/pkg/constants"
)

type ReservePart struct {
	ID           uint64                  `json:"id" db:"id"`
	RequestID    uint64                  `json:"requestId" db:"request_id"`
	PartID       uint64                  `json:"partId" db:"part_id"`
	Quantity     int                     `json:"quantity" db:"quantity"`
	UsedQuantity int                     `json:"usedQuantity" db:"used_quantity"`
	Status       constants.ReserveStatus `json:"status" db:"status"`
	CreatedAt    time.Time               `json:"createdAt" db:"created_at"`
}

func (r *ReservePart) IsActive() bool {
	return r.Status == constants.ReserveStatusActive
}

// ReservePartDetails - резерв вместе с данными запчасти из каталога.
type ReservePartDetails struct {
	ReservePart

	PartName       string   `json:"partName" db:"part_name"`
	PartSku        *string  `json:"partSku,omitempty" db:"part_sku"`
	PartUnit       string   `json:"partUnit" db:"part_unit"`
	PartPrice      *float64 `json:"partPrice,omitempty" db:"part_price"`
	NomenclatureID *string  `json:"nomenclatureId,omitempty" db:"nomenclature_id"`
}
