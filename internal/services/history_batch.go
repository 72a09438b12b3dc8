package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"service-route/internal/entities"
	"service-route/internal/repositories"
	"service-route/pkg/utils"
)

// historyBatch пишет события одной операции с общим tx_id,
// чтобы таймлайн показывал их одним блоком.
type historyBatch struct {
	repo      repositories.RequestHistoryRepositoryInterface
	txID      uuid.UUID
	actorID   *uint64
	requestID uint64
}

func newHistoryBatch(ctx context.Context, repo repositories.RequestHistoryRepositoryInterface, requestID uint64) *historyBatch {
	return &historyBatch{
		repo:      repo,
		txID:      uuid.New(),
		actorID:   utils.ActorIDFromCtx(ctx),
		requestID: requestID,
	}
}

func (b *historyBatch) add(ctx context.Context, tx pgx.Tx, eventType string, oldValue, newValue, comment *string) error {
	return b.repo.CreateInTx(ctx, tx, &entities.RequestHistory{
		RequestID: b.requestID,
		ActorID:   b.actorID,
		EventType: eventType,
		OldValue:  oldValue,
		NewValue:  newValue,
		Comment:   comment,
		TxID:      b.txID,
	})
}
