package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"service-route/internal/authz"
	"service-route/internal/dto"
	"service-route/internal/entities"
	"service-route/pkg/constants"
	"service-route/pkg/contextkeys"
	"service-route/pkg/customvalidator"
	apperrors "service-route/pkg/errors"
	"service-route/pkg/types"
	"service-route/pkg/utils"
)

type stubRequestService struct {
	requests   map[uint64]*entities.RequestDetails
	lastFilter types.Filter
	started    []uint64
}

func (s *stubRequestService) CreateRequest(_ context.Context, data dto.CreateRequestDTO) (*dto.RequestViewDTO, error) {
	view := dto.NewRequestView(entities.RequestDetails{Request: entities.Request{ID: 1, CustomerRef: data.CustomerRef, Address: data.Address, Status: constants.RequestStatusNew}}, nil)
	return &view, nil
}

func (s *stubRequestService) FindRequest(_ context.Context, id uint64) (*entities.RequestDetails, error) {
	if r, ok := s.requests[id]; ok {
		return r, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *stubRequestService) GetRequest(ctx context.Context, id uint64) (*dto.RequestViewDTO, error) {
	details, err := s.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	view := dto.NewRequestView(*details, nil)
	return &view, nil
}

func (s *stubRequestService) GetRequests(_ context.Context, filter types.Filter) ([]dto.RequestViewDTO, uint64, error) {
	s.lastFilter = filter
	return nil, 0, nil
}

func (s *stubRequestService) AssignEngineer(context.Context, uint64, uint64) (*entities.Request, error) {
	return nil, nil
}

func (s *stubRequestService) StartWork(_ context.Context, id uint64) (*entities.Request, error) {
	s.started = append(s.started, id)
	return &s.requests[id].Request, nil
}

func (s *stubRequestService) CancelRequest(context.Context, uint64, *string) (*entities.Request, error) {
	return nil, nil
}

func (s *stubRequestService) AdminUpdate(context.Context, uint64, dto.AdminUpdateRequestDTO) (*entities.Request, error) {
	return nil, nil
}

type stubHistoryService struct{}

func (stubHistoryService) GetTimeline(context.Context, uint64) ([]dto.TimelineEventDTO, error) {
	return []dto.TimelineEventDTO{}, nil
}

func newRequestControllerEnv(t *testing.T) (*echo.Echo, *stubRequestService, *RequestController) {
	t.Helper()
	engineer := uint64(7)
	svc := &stubRequestService{requests: map[uint64]*entities.RequestDetails{
		1: {Request: entities.Request{ID: 1, Status: constants.RequestStatusAssigned, EngineerID: &engineer}},
		2: {Request: entities.Request{ID: 2, Status: constants.RequestStatusNew}},
	}}

	e := echo.New()
	v := validator.New()
	require.NoError(t, customvalidator.RegisterCustomValidations(v))
	e.Validator = utils.NewValidator(v)

	return e, svc, NewRequestController(svc, stubHistoryService{}, authz.NewGatekeeper(), zap.NewNop())
}

func newContext(e *echo.Echo, method, target, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	ctx := context.WithValue(req.Context(), contextkeys.UserIDKey, userID)
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, role)
	rec := httptest.NewRecorder()
	return e.NewContext(req.WithContext(ctx), rec), rec
}

func TestGetRequests_EngineerSeesOnlyOwn(t *testing.T) {
	e, svc, ctrl := newRequestControllerEnv(t)

	c, rec := newContext(e, http.MethodGet, "/api/requests?filter[status]=assigned", "", 7, constants.RoleEngineer)
	require.NoError(t, ctrl.GetRequests(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), svc.lastFilter.Filter["engineer_id"])
	assert.Equal(t, "assigned", svc.lastFilter.Filter["status"])

	c, _ = newContext(e, http.MethodGet, "/api/requests", "", 2, constants.RoleManager)
	require.NoError(t, ctrl.GetRequests(c))
	_, scoped := svc.lastFilter.Filter["engineer_id"]
	assert.False(t, scoped, "менеджер видит все заявки")
}

func TestStartWork_ChecksAssignee(t *testing.T) {
	e, svc, ctrl := newRequestControllerEnv(t)

	cases := []struct {
		name   string
		id     string
		userID uint64
		code   int
	}{
		{name: "своя заявка", id: "1", userID: 7, code: http.StatusOK},
		{name: "чужая заявка", id: "1", userID: 8, code: http.StatusForbidden},
		{name: "не назначена", id: "2", userID: 7, code: http.StatusForbidden},
		{name: "нет заявки", id: "404", userID: 7, code: http.StatusNotFound},
		{name: "кривой id", id: "abc", userID: 7, code: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext(e, http.MethodPost, "/", "", tc.userID, constants.RoleEngineer)
			c.SetParamNames("id")
			c.SetParamValues(tc.id)

			require.NoError(t, ctrl.StartWork(c))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
	assert.Equal(t, []uint64{1}, svc.started)
}

func TestCreateRequest_Validation(t *testing.T) {
	e, _, ctrl := newRequestControllerEnv(t)

	c, rec := newContext(e, http.MethodPost, "/api/requests", `{"customerId":"","address":"ул. Мира, 5"}`, 2, constants.RoleManager)
	require.NoError(t, ctrl.CreateRequest(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(e, http.MethodPost, "/api/requests", `{"customerId":`, 2, constants.RoleManager)
	require.NoError(t, ctrl.CreateRequest(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(e, http.MethodPost, "/api/requests", `{"customerId":"79001234567","address":"ул. Мира, 5"}`, 2, constants.RoleManager)
	require.NoError(t, ctrl.CreateRequest(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"customerId":"79001234567"`)
}
