package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"service-route/internal/dto"
	"service-route/internal/repositories"
	"service-route/pkg/constants"
	"service-route/pkg/utils"
)

type RequestHistoryServiceInterface interface {
	GetTimeline(ctx context.Context, requestID uint64) ([]dto.TimelineEventDTO, error)
}

type RequestHistoryService struct {
	repo   repositories.RequestHistoryRepositoryInterface
	logger *zap.Logger
}

func NewRequestHistoryService(repo repositories.RequestHistoryRepositoryInterface, logger *zap.Logger) RequestHistoryServiceInterface {
	return &RequestHistoryService{repo: repo, logger: logger.Named("request_history_service")}
}

// GetTimeline группирует события одной транзакции (общий tx_id) в один блок.
func (s *RequestHistoryService) GetTimeline(ctx context.Context, requestID uint64) ([]dto.TimelineEventDTO, error) {
	events, err := s.repo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	timeline := make([]dto.TimelineEventDTO, 0, len(events))
	for i, event := range events {
		if i == 0 || event.TxID != events[i-1].TxID {
			timeline = append(timeline, newTimelineBlock(event))
		}
		if line := historyLine(event); line != "" {
			block := &timeline[len(timeline)-1]
			block.Lines = append(block.Lines, line)
		}
	}

	s.logger.Debug("Таймлайн сформирован", zap.Uint64("requestID", requestID), zap.Int("blocks", len(timeline)))
	return timeline, nil
}

func newTimelineBlock(event repositories.RequestHistoryItem) dto.TimelineEventDTO {
	actorName := "Система"
	if event.ActorFio.Valid {
		actorName = event.ActorFio.String
	}
	return dto.TimelineEventDTO{
		EventType: event.EventType,
		Lines:     []string{},
		ActorID:   event.ActorID,
		ActorName: actorName,
		TxID:      event.TxID.String(),
		CreatedAt: event.CreatedAt.Format("02.01.2006 / 15:04"),
	}
}

func statusName(code string) string {
	if name, ok := constants.RequestStatusNames[constants.RequestStatus(code)]; ok {
		return name
	}
	return code
}

func historyLine(event repositories.RequestHistoryItem) string {
	oldValue := utils.SafeDeref(event.OldValue)
	newValue := utils.SafeDeref(event.NewValue)
	comment := utils.SafeDeref(event.Comment)

	var line string
	switch event.EventType {
	case constants.HistoryEventCreated:
		line = "Создана заявка"
	case constants.HistoryEventStatusChanged:
		line = fmt.Sprintf("Статус: «%s» → «%s»", statusName(oldValue), statusName(newValue))
	case constants.HistoryEventAssigned:
		line = fmt.Sprintf("Назначен инженер: %s", newValue)
	case constants.HistoryEventAdminUpdate:
		line = "Изменено администратором"
		if newValue != "" {
			line += ": " + newValue
		}
	case constants.HistoryEventPartReserved:
		line = fmt.Sprintf("Зарезервирована запчасть: %s", newValue)
	case constants.HistoryEventPartRemoved:
		line = fmt.Sprintf("Удалён резерв: %s", oldValue)
	case constants.HistoryEventPartUsed:
		line = fmt.Sprintf("Использовано (%s): %s → %s", comment, oldValue, newValue)
		comment = ""
	case constants.HistoryEventOrderSubmitted:
		line = fmt.Sprintf("Заказ зарегистрирован в 1С, документ №%s", newValue)
		comment = ""
	case constants.HistoryEventPaymentMarked:
		line = "Заявка оплачена"
	default:
		line = event.EventType
	}

	if comment != "" {
		line += " (" + comment + ")"
	}
	return line
}
