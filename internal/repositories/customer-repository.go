package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-route/internal/entities"
	apperrors "service-route/pkg/errors"
)

type CustomerRepositoryInterface interface {
	FindByPhone(ctx context.Context, normalizedPhone string) (*entities.Customer, error)
	FindByID(ctx context.Context, id uint64) (*entities.Customer, error)
}

type CustomerRepository struct {
	storage *pgxpool.Pool
}

func NewCustomerRepository(storage *pgxpool.Pool) CustomerRepositoryInterface {
	return &CustomerRepository{storage: storage}
}

// FindByPhone сравнивает только цифры номера.
func (r *CustomerRepository) FindByPhone(ctx context.Context, normalizedPhone string) (*entities.Customer, error) {
	query := `
		SELECT id, full_name, phone_number, created_at
		FROM customers
		WHERE regexp_replace(phone_number, '\D', '', 'g') = $1
		ORDER BY id
		LIMIT 1`
	return r.scanOne(r.storage.QueryRow(ctx, query, normalizedPhone), "телефон "+normalizedPhone)
}

func (r *CustomerRepository) FindByID(ctx context.Context, id uint64) (*entities.Customer, error) {
	query := `SELECT id, full_name, phone_number, created_at FROM customers WHERE id = $1`
	return r.scanOne(r.storage.QueryRow(ctx, query, id), fmt.Sprintf("id %d", id))
}

func (r *CustomerRepository) scanOne(row pgx.Row, lookup string) (*entities.Customer, error) {
	var c entities.Customer
	if err := row.Scan(&c.ID, &c.FullName, &c.PhoneNumber, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("клиент (%s): %w", lookup, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("не удалось найти клиента (%s): %w", lookup, err)
	}
	return &c, nil
}
