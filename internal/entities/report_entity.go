package entities

import (
	"database/sql"
	"time"
)

type ReportFilter struct {
	DateFrom    *time.Time
	DateTo      *time.Time
	EngineerIDs []uint64
	Statuses    []string
	Page        int
	PerPage     int
}

// ReportItem - строка реестра заявок для выгрузки.
type ReportItem struct {
	RequestID         uint64
	CreatedAt         time.Time
	CustomerRef       string
	Address           string
	EquipmentTypeName sql.NullString
	CustomEquipment   sql.NullString
	EquipmentIsOther  bool
	Status            string
	EngineerFio       sql.NullString
	PaymentMethod     sql.NullString
	Document1cNumber  sql.NullString
	PartsUsed         int
	PartsAmount       float64
}
