package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"service-route/internal/entities"
	apperrors "service-route/pkg/errors"
)

type UserRepositoryInterface interface {
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByRole(ctx context.Context, role string) ([]entities.User, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := `SELECT id, full_name, phone, role, created_at FROM users WHERE id = $1`

	var u entities.User
	err := r.storage.QueryRow(ctx, query, id).Scan(&u.ID, &u.FullName, &u.Phone, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Пользователь не найден", zap.Uint64("userID", id))
			return nil, fmt.Errorf("пользователь %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("не удалось получить пользователя %d: %w", id, err)
	}
	return &u, nil
}

// FindByRole - сотрудники с ролью, по ФИО. Нужен для выбора инженера при назначении.
func (r *UserRepository) FindByRole(ctx context.Context, role string) ([]entities.User, error) {
	query := `SELECT id, full_name, phone, role, created_at FROM users WHERE role = $1 ORDER BY full_name`

	rows, err := r.storage.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить пользователей с ролью %s: %w", role, err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		var u entities.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Phone, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
