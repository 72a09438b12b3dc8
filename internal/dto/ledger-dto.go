// Файл: internal/dto/ledger-dto.go
package dto

// NomenclatureDTO - позиция номенклатуры из 1С.
type NomenclatureDTO struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Article string   `json:"article"`
	Type    string   `json:"type"`
	Unit    string   `json:"unit"`
	Price   *float64 `json:"price"`
}

// CompletedOrderItemDTO - строка услуги или материала в заказе для 1С.
type CompletedOrderItemDTO struct {
	NomenclatureID string  `json:"nomenclatureId"`
	Quantity       float64 `json:"quantity"`
	PricePerUnit   float64 `json:"pricePerUnit"`
	TotalPrice     float64 `json:"totalPrice"`
}

// CompletedOrderPayloadDTO - тело POST /completed-orders.
type CompletedOrderPayloadDTO struct {
	SourceOrderID  string                  `json:"sourceOrderId"`
	CompletionDate string                  `json:"completionDate"`
	CustomerTaxID  string                  `json:"customerTaxId"`
	Services       []CompletedOrderItemDTO `json:"services"`
	Materials      []CompletedOrderItemDTO `json:"materials"`
	PaymentMethod  string                  `json:"paymentMethod"`
	IsPaid         bool                    `json:"isPaid"`
}

// LedgerDocumentDTO - ответ 1С о созданном документе.
type LedgerDocumentDTO struct {
	Document1cID     string `json:"document1cId"`
	Document1cNumber string `json:"document1cNumber"`
	Message          string `json:"message"`
}

type PaymentStatusDTO struct {
	DocumentID    string `json:"documentId"`
	IsPaid        *bool  `json:"isPaid"`
	PaidAt        string `json:"paidAt,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	Message       string `json:"message,omitempty"`
}

// LedgerErrorDTO - тело ошибки от 1С.
type LedgerErrorDTO struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}
