package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"service-route/internal/dto"
	"service-route/internal/entities"
	"service-route/internal/services"
	"service-route/pkg/api"
	apperrors "service-route/pkg/errors"
	"service-route/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

// GetReport - реестр заявок. ?format=xlsx отдаёт файл без пагинации.
func (c *ReportController) GetReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter, format, err := c.parseFilters(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Debug("Запрос на отчет с фильтрами", zap.Any("filters", filter), zap.String("format", format))

	if format == "xlsx" {
		data, _, err := c.reportService.GetReportForExcel(reqCtx, filter)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		return c.respondWithXLSX(ctx, data)
	}

	data, total, err := c.reportService.GetReportDTOs(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Отчет успешно сформирован", data, total, filter.Page, filter.PerPage)
}

func (c *ReportController) parseFilters(ctx echo.Context) (entities.ReportFilter, string, error) {
	stdFilter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	filter := entities.ReportFilter{
		Page:    stdFilter.Page,
		PerPage: stdFilter.Limit,
	}
	format := strings.ToLower(ctx.QueryParam("format"))

	if df := ctx.QueryParam("date_from"); df != "" {
		t, err := time.Parse(time.RFC3339, df)
		if err != nil {
			return filter, format, fmt.Errorf("date_from должен быть в формате RFC3339: %w", apperrors.ErrBadRequest)
		}
		filter.DateFrom = &t
	}
	if dt := ctx.QueryParam("date_to"); dt != "" {
		t, err := time.Parse(time.RFC3339, dt)
		if err != nil {
			return filter, format, fmt.Errorf("date_to должен быть в формате RFC3339: %w", apperrors.ErrBadRequest)
		}
		filter.DateTo = &t
	}

	for _, raw := range queryList(ctx, "engineer_ids") {
		if id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64); err == nil {
			filter.EngineerIDs = append(filter.EngineerIDs, id)
		}
	}
	for _, status := range queryList(ctx, "statuses") {
		if status = strings.TrimSpace(status); status != "" {
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	return filter, format, nil
}

// queryList понимает и name[]=a&name[]=b, и name=a,b.
func queryList(ctx echo.Context, name string) []string {
	if arr, ok := ctx.QueryParams()[name+"[]"]; ok {
		return arr
	}
	if s := ctx.QueryParam(name); s != "" {
		return strings.Split(s, ",")
	}
	return nil
}

var reportHeaders = []string{
	"№", "Дата создания", "Клиент", "Адрес", "Оборудование", "Статус",
	"Инженер", "Способ оплаты", "Документ 1С", "Запчастей использовано", "Сумма запчастей",
}

func rowToSlice(n int, item dto.ReportItemDTO) []interface{} {
	createdAt := item.CreatedAt
	if t, err := time.Parse(time.RFC3339, item.CreatedAt); err == nil {
		createdAt = t.Format("02.01.2006 15:04")
	}

	return []interface{}{
		n, createdAt, item.CustomerRef, item.Address, item.EquipmentType, item.StatusName,
		item.EngineerFio, item.PaymentMethod, item.Document1cNumber, item.PartsUsed, item.PartsAmount,
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, data []dto.ReportItemDTO) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Реестр заявок"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &reportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "K1", style)

	for i, item := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := rowToSlice(i+1, item)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "B", "B", 18)
	f.SetColWidth(sheet, "C", "C", 20)
	f.SetColWidth(sheet, "D", "D", 40)
	f.SetColWidth(sheet, "E", "I", 22)
	f.SetColWidth(sheet, "J", "K", 16)

	fileName := fmt.Sprintf("report_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
