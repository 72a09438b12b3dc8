package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"service-route/internal/entities"
	db "service-route/internal/infrastructure/bd"
	"service-route/pkg/constants"
	apperrors "service-route/pkg/errors"
	"service-route/pkg/types"
)

const requestColumns = `r.id, r.customer_id, r.address, r.status, r.engineer_id, r.equipment_type_id,
	r.custom_equipment_type, r.problem_description, r.payment_method, r.document_1c_id,
	r.document_1c_number, r.submission_started_at, r.created_at, r.updated_at`

const requestDetailsColumns = requestColumns + `, u.full_name, et.name, COALESCE(et.is_other, FALSE)`

var requestAllowedFields = map[string]string{
	"id":             "r.id",
	"status":         "r.status",
	"engineer_id":    "r.engineer_id",
	"payment_method": "r.payment_method",
	"created_at":     "r.created_at",
	"updated_at":     "r.updated_at",
}

type RequestRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, request *entities.Request) (*entities.Request, error)
	FindDetailsByID(ctx context.Context, id uint64) (*entities.RequestDetails, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Request, error)
	UpdateInTx(ctx context.Context, tx pgx.Tx, request *entities.Request) error
	List(ctx context.Context, filter types.Filter) ([]entities.RequestDetails, uint64, error)
}

type RequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestRepositoryInterface {
	return &RequestRepository{storage: storage, logger: logger}
}

// scanRequest читает колонки requestColumns. Дополнительные поля передаются через extra.
func scanRequest(row pgx.Row, r *entities.Request, extra ...any) error {
	var (
		status        string
		paymentMethod *string
	)
	dest := []any{
		&r.ID, &r.CustomerRef, &r.Address, &status, &r.EngineerID, &r.EquipmentTypeID,
		&r.CustomEquipmentType, &r.ProblemDescription, &paymentMethod, &r.Document1cID,
		&r.Document1cNumber, &r.SubmissionStartedAt, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	r.Status = constants.RequestStatus(status)
	if paymentMethod != nil {
		pm := constants.PaymentMethod(*paymentMethod)
		r.PaymentMethod = &pm
	}
	return nil
}

func paymentMethodValue(pm *constants.PaymentMethod) *string {
	if pm == nil {
		return nil
	}
	s := string(*pm)
	return &s
}

func (r *RequestRepository) CreateInTx(ctx context.Context, tx pgx.Tx, request *entities.Request) (*entities.Request, error) {
	query := `
		INSERT INTO requests AS r (customer_id, address, status, equipment_type_id, custom_equipment_type, problem_description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + requestColumns

	var created entities.Request
	err := scanRequest(pick(tx, r.storage).QueryRow(ctx, query,
		request.CustomerRef, request.Address, string(request.Status),
		request.EquipmentTypeID, request.CustomEquipmentType, request.ProblemDescription,
	), &created)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать заявку: %w", err)
	}
	return &created, nil
}

func (r *RequestRepository) FindDetailsByID(ctx context.Context, id uint64) (*entities.RequestDetails, error) {
	query := `
		SELECT ` + requestDetailsColumns + `
		FROM requests r
		LEFT JOIN users u ON u.id = r.engineer_id
		LEFT JOIN equipment_types et ON et.id = r.equipment_type_id
		WHERE r.id = $1`

	var d entities.RequestDetails
	err := scanRequest(r.storage.QueryRow(ctx, query, id), &d.Request, &d.EngineerName, &d.EquipmentTypeName, &d.EquipmentTypeIsOther)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("заявка %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("не удалось получить заявку %d: %w", id, err)
	}
	return &d, nil
}

// FindForUpdateInTx блокирует строку заявки до конца транзакции.
func (r *RequestRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests r WHERE r.id = $1 FOR UPDATE`

	var req entities.Request
	if err := scanRequest(pick(tx, r.storage).QueryRow(ctx, query, id), &req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("заявка %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("не удалось заблокировать заявку %d: %w", id, err)
	}
	return &req, nil
}

func (r *RequestRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, request *entities.Request) error {
	query := `
		UPDATE requests SET
			customer_id = $2, address = $3, status = $4, engineer_id = $5, equipment_type_id = $6,
			custom_equipment_type = $7, problem_description = $8, payment_method = $9,
			document_1c_id = $10, document_1c_number = $11, submission_started_at = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := pick(tx, r.storage).QueryRow(ctx, query,
		request.ID, request.CustomerRef, request.Address, string(request.Status), request.EngineerID,
		request.EquipmentTypeID, request.CustomEquipmentType, request.ProblemDescription,
		paymentMethodValue(request.PaymentMethod), request.Document1cID, request.Document1cNumber,
		request.SubmissionStartedAt,
	).Scan(&request.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("заявка %d: %w", request.ID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("не удалось обновить заявку %d: %w", request.ID, err)
	}
	return nil
}

func (r *RequestRepository) List(ctx context.Context, filter types.Filter) ([]entities.RequestDetails, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(r.id)").From("requests r")
	countBuilder = db.ApplyFilters(countBuilder, filter, requestAllowedFields)
	countBuilder = db.ApplySearch(countBuilder, filter.Search, "r.customer_id", "r.address")

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT-запроса: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения COUNT-запроса: %w", err)
	}
	if total == 0 {
		return []entities.RequestDetails{}, 0, nil
	}

	builder := psql.Select(requestDetailsColumns).
		From("requests r").
		LeftJoin("users u ON u.id = r.engineer_id").
		LeftJoin("equipment_types et ON et.id = r.equipment_type_id")
	builder = db.ApplySearch(builder, filter.Search, "r.customer_id", "r.address")
	builder = db.ApplyListParams(builder, filter, requestAllowedFields)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("r.created_at DESC", "r.id DESC")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка заявок: %w", err)
	}
	r.logger.Debug("Список заявок", zap.String("sql", query), zap.Any("args", args))

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения запроса списка заявок: %w", err)
	}
	defer rows.Close()

	list := make([]entities.RequestDetails, 0, filter.Limit)
	for rows.Next() {
		var d entities.RequestDetails
		if err := scanRequest(rows, &d.Request, &d.EngineerName, &d.EquipmentTypeName, &d.EquipmentTypeIsOther); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
