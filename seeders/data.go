package seeders

import "service-route/pkg/constants"

var usersData = []struct {
	FullName string
	Phone    string
	Role     string
}{
	{FullName: "Администратор Системы", Phone: "79000000001", Role: constants.RoleAdmin},
	{FullName: "Смирнова Ольга", Phone: "79000000002", Role: constants.RoleManager},
	{FullName: "Петров Иван", Phone: "79000000003", Role: constants.RoleEngineer},
	{FullName: "Кузнецов Алексей", Phone: "79000000004", Role: constants.RoleEngineer},
}

var equipmentTypesData = []struct {
	Name    string
	IsOther bool
}{
	{Name: "Стиральная машина"},
	{Name: "Холодильник"},
	{Name: "Посудомоечная машина"},
	{Name: "Водонагреватель"},
	{Name: "Кондиционер"},
	{Name: "Другое", IsOther: true},
}

// Коды номенклатуры должны совпадать со справочником 1С.
var partsData = []struct {
	Name           string
	Sku            string
	Price          float64
	Quantity       int
	NomenclatureID string
}{
	{Name: "Фильтр сетчатый", Sku: "FLT-01", Price: 250, Quantity: 40, NomenclatureID: "00-00000101"},
	{Name: "ТЭН 2 кВт", Sku: "TEN-2000", Price: 1450, Quantity: 12, NomenclatureID: "00-00000102"},
	{Name: "Ремень приводной", Sku: "BLT-1270", Price: 690, Quantity: 25, NomenclatureID: "00-00000103"},
	{Name: "Термостат", Sku: "TRM-07", Price: 980, Quantity: 8, NomenclatureID: "00-00000104"},
	{Name: "Уплотнитель двери", Sku: "SEAL-55", Price: 1200, Quantity: 6, NomenclatureID: "00-00000105"},
}

var servicesData = []struct {
	Name           string
	Price          float64
	NomenclatureID string
}{
	{Name: "Диагностика", Price: 800, NomenclatureID: "00-00000201"},
	{Name: "Выезд мастера", Price: 500, NomenclatureID: "00-00000202"},
	{Name: "Замена ТЭНа", Price: 1800, NomenclatureID: "00-00000203"},
	{Name: "Замена ремня", Price: 1100, NomenclatureID: "00-00000204"},
	{Name: "Заправка хладагентом", Price: 3500, NomenclatureID: "00-00000205"},
}

var customersData = []struct {
	FullName string
	Phone    string
}{
	{FullName: "ООО Ромашка", Phone: "79161234567"},
	{FullName: "Иванова Мария", Phone: "79267654321"},
}
