package dto

type TimelineEventDTO struct {
	EventType string   `json:"eventType"`
	Lines     []string `json:"lines"` // Несколько строк текста для одного события
	ActorID   *uint64  `json:"actorId,omitempty"`
	ActorName string   `json:"actorName"`
	TxID      string   `json:"txId"`
	CreatedAt string   `json:"createdAt"`
}
