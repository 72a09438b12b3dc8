package dto

import "service-route/internal/entities"

type PaymentCheckResultDTO struct {
	Paid    bool              `json:"paid"`
	Message string            `json:"message"`
	Request *entities.Request `json:"request"`
}
