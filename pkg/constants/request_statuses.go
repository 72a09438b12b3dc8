package constants

// RequestStatus - статус заявки. Значения совпадают с кодами в БД.
type RequestStatus string

const (
	RequestStatusNew        RequestStatus = "new"
	RequestStatusAssigned   RequestStatus = "assigned"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusPaid       RequestStatus = "paid"
	RequestStatusCanceled   RequestStatus = "canceled"
)

var AllRequestStatuses = []RequestStatus{
	RequestStatusNew,
	RequestStatusAssigned,
	RequestStatusInProgress,
	RequestStatusCompleted,
	RequestStatusPaid,
	RequestStatusCanceled,
}

func (s RequestStatus) String() string { return string(s) }

func (s RequestStatus) IsValid() bool {
	for _, known := range AllRequestStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Финальные статусы
func (s RequestStatus) IsFinal() bool {
	return s == RequestStatusPaid || s == RequestStatusCanceled
}

// AcceptsReservations - в каких статусах можно резервировать запчасти.
func (s RequestStatus) AcceptsReservations() bool {
	return s == RequestStatusAssigned || s == RequestStatusInProgress
}

// Названия статусов для отчётов
var RequestStatusNames = map[RequestStatus]string{
	RequestStatusNew:        "Новая",
	RequestStatusAssigned:   "Назначена",
	RequestStatusInProgress: "В работе",
	RequestStatusCompleted:  "Выполнена",
	RequestStatusPaid:       "Оплачена",
	RequestStatusCanceled:   "Отменена",
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

func (m PaymentMethod) IsCash() bool { return m == PaymentMethodCash }

var PaymentMethodNames = map[PaymentMethod]string{
	PaymentMethodCash:     "Наличные",
	PaymentMethodCard:     "Карта",
	PaymentMethodTransfer: "Перевод",
}

type ReserveStatus string

const (
	ReserveStatusActive ReserveStatus = "active"
	ReserveStatusClosed ReserveStatus = "closed"
)

// Типы событий истории заявки
const (
	HistoryEventCreated        = "CREATED"
	HistoryEventStatusChanged  = "STATUS_CHANGED"
	HistoryEventAssigned       = "ASSIGNED"
	HistoryEventAdminUpdate    = "ADMIN_UPDATE"
	HistoryEventPartReserved   = "PART_RESERVED"
	HistoryEventPartRemoved    = "PART_RESERVATION_REMOVED"
	HistoryEventPartUsed       = "PART_USED_UPDATED"
	HistoryEventOrderSubmitted = "ORDER_SUBMITTED"
	HistoryEventPaymentMarked  = "PAYMENT_CONFIRMED"
)
