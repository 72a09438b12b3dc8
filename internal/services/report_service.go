package services

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"service-route/internal/dto"
	"service-route/internal/entities"
	"service-route/internal/repositories"
	"service-route/pkg/constants"
)

type ReportServiceInterface interface {
	GetReportForExcel(ctx context.Context, filter entities.ReportFilter) ([]dto.ReportItemDTO, uint64, error)
	GetReportDTOs(ctx context.Context, filter entities.ReportFilter) ([]dto.ReportItemDTO, uint64, error)
}

type reportService struct {
	reportRepo repositories.ReportRepositoryInterface
	logger     *zap.Logger
}

func NewReportService(reportRepo repositories.ReportRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &reportService{
		reportRepo: reportRepo,
		logger:     logger.Named("report_service"),
	}
}

// GetReportForExcel выгружает реестр целиком, без пагинации.
func (s *reportService) GetReportForExcel(ctx context.Context, filter entities.ReportFilter) ([]dto.ReportItemDTO, uint64, error) {
	filter.Page = 0
	filter.PerPage = 0
	return s.GetReportDTOs(ctx, filter)
}

func (s *reportService) GetReportDTOs(ctx context.Context, filter entities.ReportFilter) ([]dto.ReportItemDTO, uint64, error) {
	items, total, err := s.reportRepo.GetReport(ctx, filter)
	if err != nil {
		s.logger.Error("Не удалось построить отчёт", zap.Error(err))
		return nil, 0, err
	}

	nullStr := func(s sql.NullString) string {
		if s.Valid {
			return s.String
		}
		return ""
	}

	dtos := make([]dto.ReportItemDTO, len(items))
	for i, item := range items {
		equipment := nullStr(item.EquipmentTypeName)
		if item.EquipmentIsOther && nullStr(item.CustomEquipment) != "" {
			equipment = item.CustomEquipment.String
		}

		payment := nullStr(item.PaymentMethod)
		if name, ok := constants.PaymentMethodNames[constants.PaymentMethod(payment)]; ok {
			payment = name
		}

		dtos[i] = dto.ReportItemDTO{
			RequestID:        item.RequestID,
			CreatedAt:        item.CreatedAt.Format(time.RFC3339),
			CustomerRef:      item.CustomerRef,
			Address:          item.Address,
			EquipmentType:    equipment,
			StatusName:       statusName(item.Status),
			EngineerFio:      nullStr(item.EngineerFio),
			PaymentMethod:    payment,
			Document1cNumber: nullStr(item.Document1cNumber),
			PartsUsed:        item.PartsUsed,
			PartsAmount:      item.PartsAmount,
		}
	}

	return dtos, total, nil
}
