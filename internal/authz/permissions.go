// internal/authz/permissions.go
package authz

import "service-route/pkg/constants"

// --- СПИСОК ВСЕХ ПЕРМИШЕНОВ В СИСТЕМЕ ---

const (
	// Глобальные
	Superuser = "superuser"

	// Заявки
	RequestsCreate = "requests:create"
	RequestsView   = "requests:view"
	RequestsAssign = "requests:assign"
	RequestsWork   = "requests:work"
	RequestsCancel = "requests:cancel"
	RequestsAdmin  = "requests:admin"

	// Оплата
	PaymentsConfirm = "payments:confirm"

	// Отчёты
	ReportsExport = "reports:export"

	// 1С
	LedgerView = "ledger:view"

	// Видит и меняет все заявки, а не только назначенные ему
	ScopeAll = "scope:all"
)

// RolePermissions - набор прав по роли из токена.
var RolePermissions = map[string]map[string]bool{
	constants.RoleAdmin: {
		Superuser: true,
	},
	constants.RoleManager: {
		RequestsCreate:  true,
		RequestsView:    true,
		RequestsAssign:  true,
		RequestsWork:    true,
		RequestsCancel:  true,
		PaymentsConfirm: true,
		ReportsExport:   true,
		LedgerView:      true,
		ScopeAll:        true,
	},
	constants.RoleEngineer: {
		RequestsView:    true,
		RequestsWork:    true,
		PaymentsConfirm: true,
		LedgerView:      true,
	},
}

func PermissionsForRole(role string) map[string]bool {
	if perms, ok := RolePermissions[role]; ok {
		return perms
	}
	return map[string]bool{}
}
