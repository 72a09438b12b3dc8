package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"service-route/internal/entities"
)

// RequestHistoryItem - запись истории вместе с ФИО автора.
type RequestHistoryItem struct {
	entities.RequestHistory
	ActorFio sql.NullString `db:"actor_fio"`
}

type RequestHistoryRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.RequestHistory) error
	FindByRequestID(ctx context.Context, requestID uint64) ([]RequestHistoryItem, error)
}

type RequestHistoryRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestHistoryRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestHistoryRepositoryInterface {
	return &RequestHistoryRepository{storage: storage, logger: logger}
}

func (r *RequestHistoryRepository) CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.RequestHistory) error {
	query := `
		INSERT INTO request_history (request_id, actor_id, event_type, old_value, new_value, comment, tx_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := pick(tx, r.storage).Exec(ctx, query,
		history.RequestID, history.ActorID, history.EventType,
		history.OldValue, history.NewValue, history.Comment, history.TxID)
	if err != nil {
		return fmt.Errorf("не удалось записать историю заявки %d: %w", history.RequestID, err)
	}
	return nil
}

func (r *RequestHistoryRepository) FindByRequestID(ctx context.Context, requestID uint64) ([]RequestHistoryItem, error) {
	query := `
		SELECT
			h.id, h.request_id, h.actor_id, h.event_type, h.old_value, h.new_value, h.comment, h.tx_id, h.created_at,
			u.full_name AS actor_fio
		FROM request_history h
		LEFT JOIN users u ON h.actor_id = u.id
		WHERE h.request_id = $1
		ORDER BY h.created_at ASC, h.id ASC`

	rows, err := r.storage.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []RequestHistoryItem
	for rows.Next() {
		var h RequestHistoryItem
		if err := rows.Scan(
			&h.ID, &h.RequestID, &h.ActorID, &h.EventType, &h.OldValue, &h.NewValue, &h.Comment, &h.TxID, &h.CreatedAt,
			&h.ActorFio,
		); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
