// pkg/constants/constants.go
package constants

import "time"

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Формат: catalog:part:<id> -> JSON запчасти
	CacheKeyPart = "catalog:part:%d"

	// Формат: catalog:service:<id> -> JSON услуги
	CacheKeyService = "catalog:service:%d"

	// Маркер отсутствующей записи, чтобы не ходить в БД повторно.
	CacheNotFoundMarker = "notfound"

	CacheNotFoundTTL = 30 * time.Second
)

//============== ROLES ==============

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEngineer = "engineer"
)

// Формат даты завершения, который принимает 1С.
const LedgerDateTimeLayout = "2006-01-02T15:04:05"

// Отметка об отправке заказа в 1С старше этого срока считается брошенной.
const SubmissionMarkerTTL = 10 * time.Minute
