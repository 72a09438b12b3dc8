// Файл: internal/integrations/1c/client.go
package v1c

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"service-route/internal/dto"
	apperrors "service-route/pkg/errors"
)

const maxErrorBody = 4 << 10

// Client - HTTP-клиент API 1С. Все запросы подписываются заголовком X-API-Key.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger.Named("1c_client"),
	}
}

func (c *Client) GetNomenclature(ctx context.Context) ([]dto.NomenclatureDTO, error) {
	var items []dto.NomenclatureDTO
	if err := c.do(ctx, "get_nomenclature", http.MethodGet, "/nomenclature", nil, &items); err != nil {
		return nil, err
	}
	c.logger.Info("Получено элементов номенклатуры", zap.Int("count", len(items)))
	return items, nil
}

func (c *Client) SendCompletedOrder(ctx context.Context, payload dto.CompletedOrderPayloadDTO) (*dto.LedgerDocumentDTO, error) {
	c.logger.Info("Отправка выполненного заказа в 1С", zap.String("sourceOrderId", payload.SourceOrderID))

	var doc dto.LedgerDocumentDTO
	if err := c.do(ctx, "send_completed_order", http.MethodPost, "/completed-orders", payload, &doc); err != nil {
		return nil, err
	}
	if doc.Document1cID == "" {
		return nil, &apperrors.ExternalServiceError{
			Op:  "send_completed_order",
			Err: fmt.Errorf("в ответе нет document1cId"),
		}
	}

	c.logger.Info("Заказ успешно отправлен в 1С",
		zap.String("document1cId", doc.Document1cID), zap.String("document1cNumber", doc.Document1cNumber))
	return &doc, nil
}

func (c *Client) PaymentStatus(ctx context.Context, documentID string) (*dto.PaymentStatusDTO, error) {
	var status dto.PaymentStatusDTO
	path := "/payment-status/" + url.PathEscape(documentID)
	if err := c.do(ctx, "payment_status", http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) ConfirmCashPayment(ctx context.Context, documentID string) (*dto.PaymentStatusDTO, error) {
	var status dto.PaymentStatusDTO
	path := "/confirm-cash-payment/" + url.PathEscape(documentID)
	if err := c.do(ctx, "confirm_cash_payment", http.MethodPost, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// do выполняет запрос и декодирует JSON-ответ в out.
// Любая ошибка сети, не-2xx статус или битый JSON возвращается как ExternalServiceError.
func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("1С: %s: ошибка сериализации: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &apperrors.ExternalServiceError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Ошибка запроса к 1С", zap.String("op", op), zap.String("path", path), zap.Error(err))
		return &apperrors.ExternalServiceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("Ответ 1С",
		zap.String("op", op), zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		extErr := &apperrors.ExternalServiceError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}

		var ledgerErr dto.LedgerErrorDTO
		if json.Unmarshal(raw, &ledgerErr) == nil && ledgerErr.ErrorMessage != "" {
			extErr.Err = fmt.Errorf("%s: %s", ledgerErr.ErrorCode, ledgerErr.ErrorMessage)
		}
		c.logger.Warn("1С вернула ошибку", zap.String("op", op), zap.Int("status", resp.StatusCode), zap.String("body", extErr.Body))
		return extErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperrors.ExternalServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("ошибка разбора ответа: %w", err)}
	}
	return nil
}
