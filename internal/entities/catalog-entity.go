package entities

// Part - запчасть из каталога. Quantity - остаток на складе.
type Part struct {
	ID             uint64   `json:"id" db:"id"`
	Name           string   `json:"name" db:"name"`
	Sku            *string  `json:"sku,omitempty" db:"sku"`
	Unit           string   `json:"unit" db:"unit"`
	Price          *float64 `json:"price,omitempty" db:"price"`
	Quantity       int      `json:"quantity" db:"quantity"`
	NomenclatureID *string  `json:"nomenclatureId,omitempty" db:"nomenclature_id"`
}

type ServiceItem struct {
	ID             uint64   `json:"id" db:"id"`
	Name           string   `json:"name" db:"name"`
	Sku            *string  `json:"sku,omitempty" db:"sku"`
	Unit           string   `json:"unit" db:"unit"`
	Price          *float64 `json:"price,omitempty" db:"price"`
	NomenclatureID *string  `json:"nomenclatureId,omitempty" db:"nomenclature_id"`
}

type EquipmentType struct {
	ID      uint64 `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	IsOther bool   `json:"isOther" db:"is_other"`
}
