package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-route/internal/entities"
	"service-route/pkg/constants"
	apperrors "service-route/pkg/errors"
)

func TestCheckTransition_Graph(t *testing.T) {
	allowed := map[RequestAction]map[constants.RequestStatus]constants.RequestStatus{
		ActionAssign:       {constants.RequestStatusNew: constants.RequestStatusAssigned},
		ActionStart:        {constants.RequestStatusAssigned: constants.RequestStatusInProgress},
		ActionComplete:     {constants.RequestStatusInProgress: constants.RequestStatusCompleted},
		ActionConfirmCash:  {constants.RequestStatusCompleted: constants.RequestStatusPaid},
		ActionCheckPayment: {constants.RequestStatusCompleted: constants.RequestStatusPaid},
		ActionCancel: {
			constants.RequestStatusNew:        constants.RequestStatusCanceled,
			constants.RequestStatusAssigned:   constants.RequestStatusCanceled,
			constants.RequestStatusInProgress: constants.RequestStatusCanceled,
		},
	}

	for action, from := range allowed {
		for _, status := range constants.AllRequestStatuses {
			req := &entities.Request{ID: 5, Status: status, EngineerID: ptr(uint64(1))}

			target, err := CheckTransition(req, action)

			if want, ok := from[status]; ok {
				require.NoError(t, err, "%s из %s", action, status)
				assert.Equal(t, want, target)
			} else {
				var transitionErr *apperrors.InvalidStateTransitionError
				require.True(t, errors.As(err, &transitionErr), "%s из %s должен быть отклонён", action, status)
				assert.Equal(t, status.String(), transitionErr.From)
				assert.Equal(t, string(action), transitionErr.Action)
			}
			assert.Equal(t, status, req.Status, "CheckTransition не меняет заявку")
		}
	}
}

func TestCheckTransition_StartRequiresEngineer(t *testing.T) {
	_, err := CheckTransition(&entities.Request{Status: constants.RequestStatusAssigned}, ActionStart)

	var transitionErr *apperrors.InvalidStateTransitionError
	assert.True(t, errors.As(err, &transitionErr))
}

func TestAvailableActions(t *testing.T) {
	cash := constants.PaymentMethodCash
	card := constants.PaymentMethodCard

	assert.Equal(t, []string{"assign", "cancel"},
		AvailableActions(&entities.Request{Status: constants.RequestStatusNew}))
	assert.Equal(t, []string{"start", "cancel", "reserve_parts"},
		AvailableActions(&entities.Request{Status: constants.RequestStatusAssigned, EngineerID: ptr(uint64(1))}))
	assert.Equal(t, []string{"complete", "cancel", "reserve_parts"},
		AvailableActions(&entities.Request{Status: constants.RequestStatusInProgress, EngineerID: ptr(uint64(1))}))
	assert.Equal(t, []string{"create_order", "confirm_cash_payment"},
		AvailableActions(&entities.Request{Status: constants.RequestStatusCompleted, PaymentMethod: &cash}))
	assert.Equal(t, []string{"check_payment"},
		AvailableActions(&entities.Request{Status: constants.RequestStatusCompleted, PaymentMethod: &card, Document1cID: ptr("DOC")}))
	assert.Empty(t, AvailableActions(&entities.Request{Status: constants.RequestStatusPaid}))
	assert.Empty(t, AvailableActions(&entities.Request{Status: constants.RequestStatusCanceled}))
}
