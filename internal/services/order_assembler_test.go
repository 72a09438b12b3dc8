package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-route/internal/dto"
	"service-route/internal/entities"
	"service-route/pkg/constants"
	apperrors "service-route/pkg/errors"
)

func inProgress() *entities.Request {
	return &entities.Request{ID: 42, CustomerRef: "79001111111", Status: constants.RequestStatusInProgress}
}

func material(id uint64, used int, price *float64, nomenclature *string) entities.ReservePartDetails {
	return entities.ReservePartDetails{
		ReservePart:    entities.ReservePart{ID: id, Quantity: used + 1, UsedQuantity: used, Status: constants.ReserveStatusActive},
		PartName:       "Деталь",
		PartPrice:      price,
		NomenclatureID: nomenclature,
	}
}

func TestAssemble_BuildsPayload(t *testing.T) {
	env := newTestEnv(false)

	payload, err := env.assembler.Assemble(context.Background(), inProgress(),
		[]dto.ServiceLineDTO{{ServiceID: 1, Quantity: 1.5}},
		[]entities.ReservePartDetails{
			material(10, 2, ptr(250.0), ptr("MAT-1")),
			material(11, 0, ptr(250.0), ptr("MAT-1")),
			material(12, 1, nil, ptr("MAT-2")),
			material(13, 1, ptr(99.0), nil),
		},
		constants.PaymentMethodCash, ptr("ORD-1"))
	require.NoError(t, err)

	assert.Equal(t, "ORD-1", payload.SourceOrderID)
	assert.Equal(t, "2026-10-17T14:30:00", payload.CompletionDate)
	assert.Equal(t, "79001111111", payload.CustomerTaxID)
	assert.Equal(t, "cash", payload.PaymentMethod)
	assert.False(t, payload.IsPaid)

	require.Len(t, payload.Services, 1)
	assert.Equal(t, dto.CompletedOrderItemDTO{NomenclatureID: "SRV-1", Quantity: 1.5, PricePerUnit: 1000.10, TotalPrice: 1500.15}, payload.Services[0])

	require.Len(t, payload.Materials, 1, "материалы без цены или кода пропускаются")
	assert.Equal(t, dto.CompletedOrderItemDTO{NomenclatureID: "MAT-1", Quantity: 2, PricePerUnit: 250, TotalPrice: 500}, payload.Materials[0])
}

func TestAssemble_ZeroServicesFails(t *testing.T) {
	env := newTestEnv(false)

	_, err := env.assembler.Assemble(context.Background(), inProgress(), nil,
		[]entities.ReservePartDetails{material(10, 2, ptr(250.0), ptr("MAT-1"))},
		constants.PaymentMethodCard, nil)

	assert.True(t, apperrors.IsValidationKind(err, apperrors.KindValidation))
}

func TestAssemble_ServiceErrors(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()

	_, err := env.assembler.Assemble(ctx, inProgress(), []dto.ServiceLineDTO{{ServiceID: 2, Quantity: 1}}, nil, constants.PaymentMethodCash, nil)
	assert.True(t, apperrors.IsValidationKind(err, apperrors.KindPricing))

	_, err = env.assembler.Assemble(ctx, inProgress(), []dto.ServiceLineDTO{{ServiceID: 3, Quantity: 1}}, nil, constants.PaymentMethodCash, nil)
	assert.True(t, apperrors.IsValidationKind(err, apperrors.KindCatalogLink))

	_, err = env.assembler.Assemble(ctx, inProgress(), []dto.ServiceLineDTO{{ServiceID: 404, Quantity: 1}}, nil, constants.PaymentMethodCash, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.assembler.Assemble(ctx, inProgress(), []dto.ServiceLineDTO{{ServiceID: 1, Quantity: 0}}, nil, constants.PaymentMethodCash, nil)
	assert.True(t, apperrors.IsValidationKind(err, apperrors.KindQuantity))
}

func TestAssemble_RequiresWorkableStatus(t *testing.T) {
	env := newTestEnv(false)
	req := inProgress()
	req.Status = constants.RequestStatusAssigned

	_, err := env.assembler.Assemble(context.Background(), req, []dto.ServiceLineDTO{{ServiceID: 1, Quantity: 1}}, nil, constants.PaymentMethodCash, nil)

	var transitionErr *apperrors.InvalidStateTransitionError
	assert.True(t, errors.As(err, &transitionErr))
}

func TestAssemble_DefaultSourceOrderID(t *testing.T) {
	env := newTestEnv(false)

	payload, err := env.assembler.Assemble(context.Background(), inProgress(), []dto.ServiceLineDTO{{ServiceID: 1, Quantity: 1}}, nil, constants.PaymentMethodCash, nil)
	require.NoError(t, err)

	assert.Equal(t, "REQ-42", payload.SourceOrderID)
	assert.NotNil(t, payload.Materials)
}

func TestCustomerIdentifier(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()

	assert.Equal(t, "79001111111", env.assembler.customerIdentifier(ctx, "+7 (900) 111-11-11"))
	assert.Equal(t, "79005550000", env.assembler.customerIdentifier(ctx, "7"))
	assert.Equal(t, "123", env.assembler.customerIdentifier(ctx, "123"))
	assert.Equal(t, "ИНН 7701234567", env.assembler.customerIdentifier(ctx, "ИНН 7701234567"))
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()

	ok := env.assembler.Submit(ctx, dto.CompletedOrderPayloadDTO{SourceOrderID: "ORD-1"})
	assert.True(t, ok.Success)
	assert.Equal(t, "DOC-1", *ok.Document1cID)
	assert.Contains(t, ok.Message, "0000-17")
	assert.NoError(t, ok.Err)

	env.gateway.sendErr = &apperrors.ExternalServiceError{Op: "send_completed_order", StatusCode: 503}
	failed := env.assembler.Submit(ctx, dto.CompletedOrderPayloadDTO{SourceOrderID: "ORD-2"})
	assert.False(t, failed.Success)
	assert.Nil(t, failed.Document1cID)
	var extErr *apperrors.ExternalServiceError
	assert.True(t, errors.As(failed.Err, &extErr))
}
