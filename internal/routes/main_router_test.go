package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"service-route/internal/dto"
	"service-route/migrations"
	"service-route/pkg/api"
	"service-route/pkg/config"
	"service-route/pkg/constants"
	"service-route/pkg/customvalidator"
	"service-route/pkg/database/postgresql"
	"service-route/pkg/service"
	"service-route/pkg/utils"
)

// RequestFlowTestSuite гоняет весь путь заявки через HTTP на живой БД.
// Нужны TEST_DATABASE_URL и доступный Redis (TEST_REDIS_ADDRESS).
type RequestFlowTestSuite struct {
	suite.Suite
	Echo   *echo.Echo
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Ledger *httptest.Server

	ManagerToken  string
	EngineerToken string
	EngineerID    uint64
	PartID        uint64
	ServiceID     uint64

	ledgerOrders []dto.CompletedOrderPayloadDTO
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

func (s *RequestFlowTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		s.T().Skip("TEST_DATABASE_URL не задан")
	}
	redisAddr := os.Getenv("TEST_REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	ctx := context.Background()
	nopLogger := zap.NewNop()

	db, err := postgresql.ConnectDB(ctx, dsn, nopLogger)
	s.Require().NoError(err)
	s.Require().NoError(migrations.Up(db, nopLogger))
	s.DB = db

	s.Redis = redis.NewClient(&redis.Options{Addr: redisAddr, DB: 1})
	if err := s.Redis.Ping(ctx).Err(); err != nil {
		s.T().Skipf("Redis недоступен: %v", err)
	}

	s.Ledger = httptest.NewServer(http.HandlerFunc(s.fakeLedger))

	cfg := &config.Config{
		Ledger: config.LedgerConfig{BaseURL: s.Ledger.URL, Timeout: 2 * time.Second},
		Cache:  config.CacheConfig{CatalogTTL: time.Minute},
	}

	e := echo.New()
	v := validator.New()
	s.Require().NoError(customvalidator.RegisterCustomValidations(v))
	customvalidator.RegisterNullTypes(v)
	e.Validator = utils.NewValidator(v)

	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	InitRouter(e, db, s.Redis, jwtSvc, &Loggers{Main: nopLogger, Auth: nopLogger, Request: nopLogger, Ledger: nopLogger}, cfg)
	s.Echo = e

	s.seed(ctx)

	s.ManagerToken, err = jwtSvc.GenerateAccessToken(1, constants.RoleManager)
	s.Require().NoError(err)
	s.EngineerToken, err = jwtSvc.GenerateAccessToken(s.EngineerID, constants.RoleEngineer)
	s.Require().NoError(err)
}

func (s *RequestFlowTestSuite) TearDownSuite() {
	if s.Ledger != nil {
		s.Ledger.Close()
	}
	if s.Redis != nil {
		s.Redis.FlushDB(context.Background())
		s.Redis.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

func (s *RequestFlowTestSuite) seed(ctx context.Context) {
	suffix := time.Now().UnixNano()

	s.Require().NoError(s.DB.QueryRow(ctx,
		`INSERT INTO users (full_name, role) VALUES ($1, 'engineer') RETURNING id`,
		fmt.Sprintf("Инженер %d", suffix)).Scan(&s.EngineerID))
	s.Require().NoError(s.DB.QueryRow(ctx,
		`INSERT INTO parts (name, price, quantity, nomenclature_id) VALUES ('Фильтр', 250, 10, 'MAT-1') RETURNING id`).Scan(&s.PartID))
	s.Require().NoError(s.DB.QueryRow(ctx,
		`INSERT INTO services (name, price, nomenclature_id) VALUES ('Диагностика', 1000, 'SRV-1') RETURNING id`).Scan(&s.ServiceID))
}

func (s *RequestFlowTestSuite) fakeLedger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/completed-orders":
		var payload dto.CompletedOrderPayloadDTO
		_ = json.NewDecoder(r.Body).Decode(&payload)
		s.ledgerOrders = append(s.ledgerOrders, payload)
		_ = json.NewEncoder(w).Encode(dto.LedgerDocumentDTO{Document1cID: "DOC-1", Document1cNumber: "0000-1"})
	default:
		paid := true
		_ = json.NewEncoder(w).Encode(dto.PaymentStatusDTO{DocumentID: "DOC-1", IsPaid: &paid})
	}
}

func (s *RequestFlowTestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func (s *RequestFlowTestSuite) TestFullFlow() {
	sentBefore := len(s.ledgerOrders)
	rec, env := s.do(http.MethodPost, "/api/requests", s.ManagerToken, dto.CreateRequestDTO{
		CustomerRef: "79001234567",
		Address:     "ул. Ленина, 1",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created dto.RequestViewDTO
	s.Require().NoError(json.Unmarshal(env.Body, &created))
	id := created.ID
	s.Equal(constants.RequestStatusNew, created.Status)

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/start", id), s.EngineerToken, nil)
	s.Equal(http.StatusForbidden, rec.Code, "инженер не видит неназначенную заявку")

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/assign", id), s.ManagerToken, dto.AssignEngineerDTO{EngineerID: s.EngineerID})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/start", id), s.EngineerToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/reserve-parts", id), s.EngineerToken,
		dto.CreateReservePartsDTO{Items: []dto.ReservePartItemDTO{{PartID: s.PartID, Quantity: 2}}})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var reserved []struct {
		ID uint64 `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(env.Body, &reserved))
	s.Require().Len(reserved, 1)

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/complete", id), s.EngineerToken, dto.CompleteRequestDTO{
		PaymentMethod: constants.PaymentMethodCard,
		Services:      []dto.ServiceLineDTO{{ServiceID: s.ServiceID, Quantity: 1}},
		Reservations:  []dto.UsedReservationDTO{{ReservePartID: reserved[0].ID, UsedQuantity: 1}},
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Require().Len(s.ledgerOrders, sentBefore+1)
	s.Equal("card", s.ledgerOrders[sentBefore].PaymentMethod)

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/confirm-cash-payment", id), s.EngineerToken, nil)
	s.Equal(http.StatusConflict, rec.Code, "безналичную оплату нельзя подтвердить как наличные")

	rec, env = s.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/check-payment", id), s.EngineerToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var check dto.PaymentCheckResultDTO
	s.Require().NoError(json.Unmarshal(env.Body, &check))
	s.True(check.Paid)
	s.Equal(constants.RequestStatusPaid, check.Request.Status)

	rec, env = s.do(http.MethodGet, fmt.Sprintf("/api/requests/%d/history", id), s.ManagerToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var timeline []dto.TimelineEventDTO
	s.Require().NoError(json.Unmarshal(env.Body, &timeline))
	s.NotEmpty(timeline)

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/cancel", id), s.ManagerToken, dto.CancelRequestDTO{})
	s.Equal(http.StatusConflict, rec.Code, "оплаченную заявку отменить нельзя")
}

// startedRequest проводит новую заявку до in_progress от имени менеджера и инженера.
func (s *RequestFlowTestSuite) startedRequest() uint64 {
	rec, env := s.do(http.MethodPost, "/api/requests", s.ManagerToken, dto.CreateRequestDTO{
		CustomerRef: "79007654321",
		Address:     "ул. Гагарина, 3",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created dto.RequestViewDTO
	s.Require().NoError(json.Unmarshal(env.Body, &created))

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/assign", created.ID), s.ManagerToken, dto.AssignEngineerDTO{EngineerID: s.EngineerID})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/start", created.ID), s.EngineerToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	return created.ID
}

func (s *RequestFlowTestSuite) TestCatalogLookups() {
	rec, env := s.do(http.MethodGet, "/api/engineers", s.ManagerToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var engineers api.ListBody[dto.EngineerDTO]
	s.Require().NoError(json.Unmarshal(env.Body, &engineers))
	ids := make([]uint64, 0, len(engineers.List))
	for _, e := range engineers.List {
		ids = append(ids, e.ID)
	}
	s.Contains(ids, s.EngineerID)

	rec, env = s.do(http.MethodGet, "/api/catalog/services", s.EngineerToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var services api.ListBody[dto.CatalogItemDTO]
	s.Require().NoError(json.Unmarshal(env.Body, &services))
	found := false
	for _, item := range services.List {
		if item.ID == s.ServiceID {
			found = true
			s.True(item.Billable)
			s.Equal("SRV-1", *item.NomenclatureID)
		}
	}
	s.True(found, "услуга из сида есть в списке")

	rec, env = s.do(http.MethodGet, "/api/catalog/parts", s.EngineerToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var parts api.ListBody[dto.CatalogItemDTO]
	s.Require().NoError(json.Unmarshal(env.Body, &parts))
	s.NotEmpty(parts.List)

	rec, _ = s.do(http.MethodGet, fmt.Sprintf("/api/catalog/parts/%d", s.PartID), s.EngineerToken, nil)
	s.Equal(http.StatusOK, rec.Code)
	rec, _ = s.do(http.MethodGet, "/api/catalog/services/999999999", s.EngineerToken, nil)
	s.Equal(http.StatusNotFound, rec.Code)
	rec, _ = s.do(http.MethodGet, "/api/engineers", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RequestFlowTestSuite) TestCompletionUsesCurrentServicePrice() {
	ctx := context.Background()
	priced := s.ServiceID

	// Карточка услуги попадает в кеш со старой ценой.
	rec, _ := s.do(http.MethodGet, fmt.Sprintf("/api/catalog/services/%d", priced), s.EngineerToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	_, err := s.DB.Exec(ctx, `UPDATE services SET price = 1500 WHERE id = $1`, priced)
	s.Require().NoError(err)
	defer func() {
		_, _ = s.DB.Exec(ctx, `UPDATE services SET price = 1000 WHERE id = $1`, priced)
	}()

	id := s.startedRequest()
	sentBefore := len(s.ledgerOrders)
	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/complete", id), s.EngineerToken, dto.CompleteRequestDTO{
		PaymentMethod: constants.PaymentMethodCash,
		Services:      []dto.ServiceLineDTO{{ServiceID: priced, Quantity: 2}},
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Require().Len(s.ledgerOrders, sentBefore+1)

	order := s.ledgerOrders[sentBefore]
	s.Require().Len(order.Services, 1)
	s.Equal(1500.0, order.Services[0].PricePerUnit)
	s.Equal(3000.0, order.Services[0].TotalPrice)
	s.Equal(fmt.Sprintf("REQ-%d", id), order.SourceOrderID)
}

func (s *RequestFlowTestSuite) TestUnauthorized() {
	rec, _ := s.do(http.MethodGet, "/api/requests", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodPut, "/api/requests/1", s.ManagerToken, map[string]string{"status": "paid"})
	s.Equal(http.StatusForbidden, rec.Code, "менеджер не правит в обход статусов")

	rec, _ = s.do(http.MethodGet, "/api/report", s.EngineerToken, nil)
	s.Equal(http.StatusForbidden, rec.Code)
}

func TestRequestFlowTestSuite(t *testing.T) {
	suite.Run(t, new(RequestFlowTestSuite))
}
