package dto

type ReportItemDTO struct {
	RequestID        uint64  `json:"request_id"`
	CreatedAt        string  `json:"created_at"`
	CustomerRef      string  `json:"customer_id"`
	Address          string  `json:"address"`
	EquipmentType    string  `json:"equipment_type"`
	StatusName       string  `json:"status_name"`
	EngineerFio      string  `json:"engineer_fio"`
	PaymentMethod    string  `json:"payment_method"`
	Document1cNumber string  `json:"document_1c_number"`
	PartsUsed        int     `json:"parts_used"`
	PartsAmount      float64 `json:"parts_amount"`
}
