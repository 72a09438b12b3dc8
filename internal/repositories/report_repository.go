package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-route/internal/entities"
)

type ReportRepositoryInterface interface {
	GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error)
}

type reportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) ReportRepositoryInterface {
	return &reportRepository{db: db}
}

// buildReportBase - общая база (FROM, JOIN, WHERE) для COUNT и основного запроса.
func buildReportBase(filter entities.ReportFilter) sq.SelectBuilder {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	baseSelect := psql.Select().
		From("requests r").
		LeftJoin("users engineer ON r.engineer_id = engineer.id").
		LeftJoin("equipment_types et ON r.equipment_type_id = et.id")

	if filter.DateFrom != nil {
		baseSelect = baseSelect.Where(sq.GtOrEq{"r.created_at": filter.DateFrom})
	}
	if filter.DateTo != nil {
		baseSelect = baseSelect.Where(sq.LtOrEq{"r.created_at": filter.DateTo})
	}
	if len(filter.EngineerIDs) > 0 {
		baseSelect = baseSelect.Where(sq.Eq{"r.engineer_id": filter.EngineerIDs})
	}
	if len(filter.Statuses) > 0 {
		baseSelect = baseSelect.Where(sq.Eq{"r.status": filter.Statuses})
	}
	return baseSelect
}

func (r *reportRepository) GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error) {
	baseSelect := buildReportBase(filter)

	countQuery, countArgs, err := baseSelect.Columns("COUNT(r.id)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT-запроса: %w", err)
	}
	var totalCount uint64
	if err = r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения COUNT-запроса: %w", err)
	}
	if totalCount == 0 {
		return []entities.ReportItem{}, 0, nil
	}

	mainBuilder := baseSelect.Columns(
		"r.id", "r.created_at", "r.customer_id", "r.address",
		"et.name", "r.custom_equipment_type", "COALESCE(et.is_other, FALSE)",
		"r.status", "engineer.full_name", "r.payment_method", "r.document_1c_number",
		"(SELECT COALESCE(SUM(rp.used_quantity), 0) FROM reserve_parts rp WHERE rp.request_id = r.id AND rp.status = 'active')",
		`(SELECT COALESCE(SUM(rp.used_quantity * COALESCE(p.price, 0)), 0)
		    FROM reserve_parts rp JOIN parts p ON p.id = rp.part_id
		   WHERE rp.request_id = r.id AND rp.status = 'active')`,
	).OrderBy("r.id DESC")

	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		mainBuilder = mainBuilder.Limit(uint64(filter.PerPage)).Offset(uint64((page - 1) * filter.PerPage))
	}

	query, args, err := mainBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки основного запроса: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения основного запроса: %w", err)
	}
	defer rows.Close()

	var reportItems []entities.ReportItem
	for rows.Next() {
		var item entities.ReportItem
		err := rows.Scan(
			&item.RequestID, &item.CreatedAt, &item.CustomerRef, &item.Address,
			&item.EquipmentTypeName, &item.CustomEquipment, &item.EquipmentIsOther,
			&item.Status, &item.EngineerFio, &item.PaymentMethod, &item.Document1cNumber,
			&item.PartsUsed, &item.PartsAmount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		reportItems = append(reportItems, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return reportItems, totalCount, nil
}
