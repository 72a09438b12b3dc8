package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"service-route/internal/entities"
	"service-route/pkg/constants"
	apperrors "service-route/pkg/errors"
)

// CachedCatalogRepository - read-through кеш в Redis поверх каталога.
// Отсутствующие записи кешируются маркером, чтобы не ходить в БД повторно.
type CachedCatalogRepository struct {
	next   CatalogRepositoryInterface
	cache  CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedCatalogRepository(next CatalogRepositoryInterface, cache CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) CatalogRepositoryInterface {
	return &CachedCatalogRepository{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (r *CachedCatalogRepository) FindPart(ctx context.Context, id uint64) (*entities.Part, error) {
	return cachedLookup(ctx, r, fmt.Sprintf(constants.CacheKeyPart, id), func() (*entities.Part, error) {
		return r.next.FindPart(ctx, id)
	})
}

func (r *CachedCatalogRepository) FindService(ctx context.Context, id uint64) (*entities.ServiceItem, error) {
	return cachedLookup(ctx, r, fmt.Sprintf(constants.CacheKeyService, id), func() (*entities.ServiceItem, error) {
		return r.next.FindService(ctx, id)
	})
}

// Типы оборудования читаются редко, в кеш не кладём.
func (r *CachedCatalogRepository) FindEquipmentType(ctx context.Context, id uint64) (*entities.EquipmentType, error) {
	return r.next.FindEquipmentType(ctx, id)
}

// Списки не кешируются: они нужны для выбора в формах и должны быть актуальными.
func (r *CachedCatalogRepository) ListParts(ctx context.Context) ([]entities.Part, error) {
	return r.next.ListParts(ctx)
}

func (r *CachedCatalogRepository) ListServices(ctx context.Context) ([]entities.ServiceItem, error) {
	return r.next.ListServices(ctx)
}

func cachedLookup[T any](ctx context.Context, r *CachedCatalogRepository, key string, load func() (*T, error)) (*T, error) {
	cached, err := r.cache.Get(ctx, key)
	switch {
	case err == nil && cached == constants.CacheNotFoundMarker:
		return nil, fmt.Errorf("%s: %w", key, apperrors.ErrNotFound)
	case err == nil:
		var item T
		if jsonErr := json.Unmarshal([]byte(cached), &item); jsonErr == nil {
			return &item, nil
		}
		r.logger.Warn("Битая запись в кеше каталога", zap.String("key", key))
		if delErr := r.cache.Del(ctx, key); delErr != nil {
			r.logger.Warn("Не удалось удалить запись из кеша", zap.String("key", key), zap.Error(delErr))
		}
	case !errors.Is(err, redis.Nil):
		// Redis недоступен - работаем напрямую с БД
		r.logger.Warn("Ошибка чтения кеша каталога", zap.String("key", key), zap.Error(err))
	}

	item, err := load()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if setErr := r.cache.Set(ctx, key, constants.CacheNotFoundMarker, constants.CacheNotFoundTTL); setErr != nil {
				r.logger.Warn("Не удалось записать маркер в кеш", zap.String("key", key), zap.Error(setErr))
			}
		}
		return nil, err
	}

	payload, err := json.Marshal(item)
	if err == nil {
		if setErr := r.cache.Set(ctx, key, payload, r.ttl); setErr != nil {
			r.logger.Warn("Не удалось записать запись в кеш", zap.String("key", key), zap.Error(setErr))
		}
	}
	return item, nil
}
