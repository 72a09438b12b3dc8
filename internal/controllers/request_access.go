package controllers

import (
	"context"

	"service-route/internal/authz"
	"service-route/internal/entities"
	"service-route/internal/services"
	apperrors "service-route/pkg/errors"
	"service-route/pkg/types"
	"service-route/pkg/utils"
)

// requestAccess проверяет права на конкретную заявку.
// Middleware проверяет только право роли, здесь же смотрим на исполнителя.
type requestAccess struct {
	requests   services.RequestServiceInterface
	gatekeeper *authz.Gatekeeper
}

func (a requestAccess) actor(ctx context.Context) (authz.Context, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return authz.Context{}, err
	}
	role, err := utils.GetUserRoleFromCtx(ctx)
	if err != nil {
		return authz.Context{}, err
	}
	return authz.Context{ActorID: userID, Role: role}, nil
}

func (a requestAccess) check(ctx context.Context, id uint64, permission string) (*entities.RequestDetails, error) {
	actor, err := a.actor(ctx)
	if err != nil {
		return nil, err
	}

	details, err := a.requests.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	actor.Target = details
	if !a.gatekeeper.Can(actor, permission) {
		return nil, apperrors.ErrForbidden
	}
	return details, nil
}

// scopeFilter ограничивает список заявками текущего инженера.
func (a requestAccess) scopeFilter(ctx context.Context, filter *types.Filter) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}
	if a.gatekeeper.Can(actor, authz.ScopeAll) {
		return nil
	}
	if filter.Filter == nil {
		filter.Filter = make(map[string]interface{})
	}
	filter.Filter["engineer_id"] = actor.ActorID
	return nil
}
