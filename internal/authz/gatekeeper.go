package authz

import (
	"service-route/internal/entities"
)

// Context - кто выполняет действие и над чем.
type Context struct {
	ActorID uint64
	Role    string
	Target  interface{}
}

// Gatekeeper остается пустым, это просто "контейнер" для методов
type Gatekeeper struct{}

func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{}
}

func (g *Gatekeeper) Can(ctx Context, permission string) bool {
	perms := PermissionsForRole(ctx.Role)

	// Этап 1: Проверка на Superuser
	if perms[Superuser] {
		return true
	}

	// Этап 2: Проверка на наличие базового пермишена
	if !perms[permission] {
		return false
	}

	// Этап 3: Без цели — разрешено (например создание или список)
	if ctx.Target == nil || perms[ScopeAll] {
		return true
	}

	// Этап 4: Инженер работает только со своими заявками
	switch t := ctx.Target.(type) {
	case *entities.Request:
		return t.EngineerID != nil && *t.EngineerID == ctx.ActorID
	case *entities.RequestDetails:
		return t.EngineerID != nil && *t.EngineerID == ctx.ActorID
	}

	return false
}
