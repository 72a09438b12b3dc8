package services

import (
	"fmt"

	"service-route/internal/entities"
	"service-route/pkg/constants"
	apperrors "service-route/pkg/errors"
)

// RequestAction - действие над заявкой, которое может менять её статус.
type RequestAction string

const (
	ActionAssign       RequestAction = "assign"
	ActionStart        RequestAction = "start"
	ActionComplete     RequestAction = "complete"
	ActionConfirmCash  RequestAction = "confirm_cash_payment"
	ActionCheckPayment RequestAction = "check_payment"
	ActionCancel       RequestAction = "cancel"
	ActionReserveParts RequestAction = "reserve_parts"
	ActionCreateOrder  RequestAction = "create_order"
)

type transition struct {
	from []constants.RequestStatus
	to   constants.RequestStatus
}

// Граф переходов. Отмена запрещена из completed, paid и canceled.
var requestTransitions = map[RequestAction]transition{
	ActionAssign: {
		from: []constants.RequestStatus{constants.RequestStatusNew},
		to:   constants.RequestStatusAssigned,
	},
	ActionStart: {
		from: []constants.RequestStatus{constants.RequestStatusAssigned},
		to:   constants.RequestStatusInProgress,
	},
	ActionComplete: {
		from: []constants.RequestStatus{constants.RequestStatusInProgress},
		to:   constants.RequestStatusCompleted,
	},
	ActionConfirmCash: {
		from: []constants.RequestStatus{constants.RequestStatusCompleted},
		to:   constants.RequestStatusPaid,
	},
	ActionCheckPayment: {
		from: []constants.RequestStatus{constants.RequestStatusCompleted},
		to:   constants.RequestStatusPaid,
	},
	ActionCancel: {
		from: []constants.RequestStatus{
			constants.RequestStatusNew,
			constants.RequestStatusAssigned,
			constants.RequestStatusInProgress,
		},
		to: constants.RequestStatusCanceled,
	},
}

// CheckTransition возвращает целевой статус или InvalidStateTransitionError.
// Заявку не меняет.
func CheckTransition(req *entities.Request, action RequestAction) (constants.RequestStatus, error) {
	t, ok := requestTransitions[action]
	if !ok {
		return "", fmt.Errorf("неизвестное действие над заявкой: %s", action)
	}

	allowed := false
	for _, from := range t.from {
		if req.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", apperrors.NewInvalidStateTransition(req.ID, req.Status.String(), string(action), t.to.String())
	}

	if action == ActionStart && req.EngineerID == nil {
		return "", apperrors.NewInvalidStateTransition(req.ID, req.Status.String(), string(action), t.to.String())
	}

	return t.to, nil
}

// checkStatusIn - проверка для действий, которые не меняют статус (резервы, отправка заказа).
func checkStatusIn(req *entities.Request, action RequestAction, statuses ...constants.RequestStatus) error {
	for _, s := range statuses {
		if req.Status == s {
			return nil
		}
	}
	return apperrors.NewInvalidStateTransition(req.ID, req.Status.String(), string(action), req.Status.String())
}

// AvailableActions - что можно сделать с заявкой сейчас. Используется карточкой заявки.
func AvailableActions(req *entities.Request) []string {
	actions := make([]string, 0, 4)

	for _, action := range []RequestAction{ActionAssign, ActionStart, ActionComplete, ActionCancel} {
		if _, err := CheckTransition(req, action); err == nil {
			actions = append(actions, string(action))
		}
	}

	if req.Status.AcceptsReservations() {
		actions = append(actions, string(ActionReserveParts))
	}

	if req.Status == constants.RequestStatusCompleted {
		if !req.HasDocument() {
			actions = append(actions, string(ActionCreateOrder))
		}
		if req.PaymentMethod != nil {
			switch {
			case req.PaymentMethod.IsCash():
				actions = append(actions, string(ActionConfirmCash))
			case req.HasDocument():
				actions = append(actions, string(ActionCheckPayment))
			}
		}
	}

	return actions
}

func requestLockKey(requestID uint64) string {
	return fmt.Sprintf("request:%d", requestID)
}
