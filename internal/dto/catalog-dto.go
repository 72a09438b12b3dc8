package dto

import (
	"service-route/internal/entities"
	"service-route/pkg/utils"
)

// EngineerDTO - инженер для выбора при назначении.
type EngineerDTO struct {
	ID       uint64 `json:"id"`
	FullName string `json:"fullName"`
}

// CatalogItemDTO - запчасть или услуга в форме заявки.
// Billable: есть цена и код номенклатуры, позиция попадёт в заказ 1С.
type CatalogItemDTO struct {
	ID             uint64   `json:"id"`
	Name           string   `json:"name"`
	Sku            *string  `json:"sku,omitempty"`
	Unit           string   `json:"unit"`
	Price          *float64 `json:"price"`
	NomenclatureID *string  `json:"nomenclatureId"`
	Billable       bool     `json:"billable"`
	Quantity       *int     `json:"quantity,omitempty"`
}

func billable(price *float64, nomenclatureID *string) bool {
	return price != nil && *price > 0 && utils.SafeDeref(nomenclatureID) != ""
}

func NewPartItem(p entities.Part) CatalogItemDTO {
	quantity := p.Quantity
	return CatalogItemDTO{
		ID:             p.ID,
		Name:           p.Name,
		Sku:            p.Sku,
		Unit:           p.Unit,
		Price:          p.Price,
		NomenclatureID: p.NomenclatureID,
		Billable:       billable(p.Price, p.NomenclatureID),
		Quantity:       &quantity,
	}
}

func NewServiceItem(s entities.ServiceItem) CatalogItemDTO {
	return CatalogItemDTO{
		ID:             s.ID,
		Name:           s.Name,
		Sku:            s.Sku,
		Unit:           s.Unit,
		Price:          s.Price,
		NomenclatureID: s.NomenclatureID,
		Billable:       billable(s.Price, s.NomenclatureID),
	}
}
