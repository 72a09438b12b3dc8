package entities

import (
	"time"

	"github.com/google/uuid"
)

type RequestHistory struct {
	ID        uint64    `json:"id" db:"id"`
	RequestID uint64    `json:"requestId" db:"request_id"`
	ActorID   *uint64   `json:"actorId,omitempty" db:"actor_id"`
	EventType string    `json:"eventType" db:"event_type"`
	OldValue  *string   `json:"oldValue,omitempty" db:"old_value"`
	NewValue  *string   `json:"newValue,omitempty" db:"new_value"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	TxID      uuid.UUID `json:"txId" db:"tx_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
