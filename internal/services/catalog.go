package services

import (
	"context"

	"go.uber.org/zap"

	"service-route/internal/dto"
	"service-route/internal/repositories"
	"service-route/pkg/constants"
)

// CatalogServiceInterface - справочники для форм назначения, резерва и завершения.
type CatalogServiceInterface interface {
	GetEngineers(ctx context.Context) ([]dto.EngineerDTO, error)
	GetParts(ctx context.Context) ([]dto.CatalogItemDTO, error)
	GetPart(ctx context.Context, id uint64) (*dto.CatalogItemDTO, error)
	GetServices(ctx context.Context) ([]dto.CatalogItemDTO, error)
	GetService(ctx context.Context, id uint64) (*dto.CatalogItemDTO, error)
}

type CatalogService struct {
	userRepo    repositories.UserRepositoryInterface
	catalogRepo repositories.CatalogRepositoryInterface
	logger      *zap.Logger
}

// NewCatalogService. catalogRepo здесь кешированный: карточки только для показа,
// расчёт заказа и остатков читает каталог напрямую.
func NewCatalogService(
	userRepo repositories.UserRepositoryInterface,
	catalogRepo repositories.CatalogRepositoryInterface,
	logger *zap.Logger,
) CatalogServiceInterface {
	return &CatalogService{userRepo: userRepo, catalogRepo: catalogRepo, logger: logger.Named("catalog_service")}
}

func (s *CatalogService) GetEngineers(ctx context.Context) ([]dto.EngineerDTO, error) {
	users, err := s.userRepo.FindByRole(ctx, constants.RoleEngineer)
	if err != nil {
		s.logger.Error("Не удалось получить список инженеров", zap.Error(err))
		return nil, err
	}
	res := make([]dto.EngineerDTO, 0, len(users))
	for _, u := range users {
		res = append(res, dto.EngineerDTO{ID: u.ID, FullName: u.FullName})
	}
	return res, nil
}

func (s *CatalogService) GetParts(ctx context.Context) ([]dto.CatalogItemDTO, error) {
	parts, err := s.catalogRepo.ListParts(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.CatalogItemDTO, 0, len(parts))
	for _, p := range parts {
		res = append(res, dto.NewPartItem(p))
	}
	return res, nil
}

func (s *CatalogService) GetPart(ctx context.Context, id uint64) (*dto.CatalogItemDTO, error) {
	part, err := s.catalogRepo.FindPart(ctx, id)
	if err != nil {
		return nil, err
	}
	item := dto.NewPartItem(*part)
	return &item, nil
}

func (s *CatalogService) GetServices(ctx context.Context) ([]dto.CatalogItemDTO, error) {
	items, err := s.catalogRepo.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.CatalogItemDTO, 0, len(items))
	for _, it := range items {
		res = append(res, dto.NewServiceItem(it))
	}
	return res, nil
}

func (s *CatalogService) GetService(ctx context.Context, id uint64) (*dto.CatalogItemDTO, error) {
	item, err := s.catalogRepo.FindService(ctx, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewServiceItem(*item)
	return &res, nil
}
