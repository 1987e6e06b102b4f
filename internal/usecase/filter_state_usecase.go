package usecase

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/domain/repository"
	apperrors "github.com/mapdata-service/internal/pkg/errors"
)

// LegacyFavoritesKey - избранное до разделения по картам
const LegacyFavoritesKey = "mapdata:favorites"

func activeCategoriesKey(mapKey string) string {
	return fmt.Sprintf("mapdata:%s:active_categories", mapKey)
}

func activeRegionsKey(mapKey string) string {
	return fmt.Sprintf("mapdata:%s:active_regions", mapKey)
}

func favoritesKey(mapKey string) string {
	return fmt.Sprintf("mapdata:%s:favorites", mapKey)
}

func favoritesMigratedKey(mapKey string) string {
	return fmt.Sprintf("mapdata:%s:favorites_migrated", mapKey)
}

// FilterStateUseCase хранит активные категории, регионы и избранное.
// Каждое изменение сохраняется сразу; записи сериализуются мьютексом.
type FilterStateUseCase struct {
	stateRepo repository.StateRepository
	logger    *zap.Logger
	mu        sync.Mutex
}

func NewFilterStateUseCase(stateRepo repository.StateRepository, logger *zap.Logger) *FilterStateUseCase {
	return &FilterStateUseCase{
		stateRepo: stateRepo,
		logger:    logger,
	}
}

// LoadActiveCategories возвращает сохранённые категории как есть.
// Если сохранённых нет - выбирает одну категорию по умолчанию и сохраняет её.
func (uc *FilterStateUseCase) LoadActiveCategories(
	ctx context.Context,
	mapKey string,
	defaultCategory string,
	categories []domain.Category,
) ([]string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	saved, err := uc.get(ctx, activeCategoriesKey(mapKey))
	if err != nil {
		return nil, err
	}
	if len(saved) > 0 {
		return saved, nil
	}
	if len(categories) == 0 {
		return []string{}, nil
	}

	chosen := categories[0].ID
	for _, c := range categories {
		if defaultCategory != "" && c.ID == defaultCategory {
			chosen = c.ID
			break
		}
	}

	active := []string{chosen}
	if err := uc.set(ctx, activeCategoriesKey(mapKey), active); err != nil {
		return nil, err
	}
	return active, nil
}

// SetActiveCategories заменяет набор активных категорий
func (uc *FilterStateUseCase) SetActiveCategories(ctx context.Context, mapKey string, ids []string) ([]string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	active := dedupe(ids)
	if err := uc.set(ctx, activeCategoriesKey(mapKey), active); err != nil {
		return nil, err
	}
	return active, nil
}

// ToggleCategory включает или выключает категорию
func (uc *FilterStateUseCase) ToggleCategory(ctx context.Context, mapKey, id string) ([]string, error) {
	return uc.toggle(ctx, activeCategoriesKey(mapKey), id)
}

// LoadActiveRegions фильтрует сохранённые регионы по текущему набору.
// Пустой результат означает все регионы; этот запасной вариант не сохраняется.
func (uc *FilterStateUseCase) LoadActiveRegions(ctx context.Context, mapKey string, uniqueRegions []string) ([]string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	saved, err := uc.get(ctx, activeRegionsKey(mapKey))
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(uniqueRegions))
	for _, r := range uniqueRegions {
		known[r] = struct{}{}
	}

	active := make([]string, 0, len(saved))
	for _, r := range saved {
		if _, ok := known[r]; ok {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return append([]string{}, uniqueRegions...), nil
	}
	return active, nil
}

// SetActiveRegions заменяет набор активных регионов
func (uc *FilterStateUseCase) SetActiveRegions(ctx context.Context, mapKey string, regions []string) ([]string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	active := dedupe(regions)
	if err := uc.set(ctx, activeRegionsKey(mapKey), active); err != nil {
		return nil, err
	}
	return active, nil
}

// ToggleRegion включает или выключает регион
func (uc *FilterStateUseCase) ToggleRegion(ctx context.Context, mapKey, region string) ([]string, error) {
	return uc.toggle(ctx, activeRegionsKey(mapKey), region)
}

// LoadFavorites возвращает избранное карты.
// Один раз для каждой карты пустой список дополняется общим избранным старого формата.
func (uc *FilterStateUseCase) LoadFavorites(ctx context.Context, mapKey string) ([]string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	favorites, err := uc.get(ctx, favoritesKey(mapKey))
	if err != nil {
		return nil, err
	}
	if len(favorites) > 0 {
		return favorites, nil
	}

	migrated, err := uc.get(ctx, favoritesMigratedKey(mapKey))
	if err != nil {
		return nil, err
	}
	if len(migrated) > 0 {
		return favorites, nil
	}

	legacy, err := uc.get(ctx, LegacyFavoritesKey)
	if err != nil {
		return nil, err
	}
	if len(legacy) > 0 {
		if err := uc.set(ctx, favoritesKey(mapKey), legacy); err != nil {
			return nil, err
		}
		uc.logger.Info("Migrated legacy favorites",
			zap.String("map_key", mapKey),
			zap.Int("count", len(legacy)))
	}
	if err := uc.set(ctx, favoritesMigratedKey(mapKey), []string{"1"}); err != nil {
		return nil, err
	}
	return legacy, nil
}

// ToggleFavorite добавляет предмет в избранное или убирает его
func (uc *FilterStateUseCase) ToggleFavorite(ctx context.Context, mapKey, itemKey string) ([]string, error) {
	if _, err := uc.LoadFavorites(ctx, mapKey); err != nil {
		return nil, err
	}
	return uc.toggle(ctx, favoritesKey(mapKey), itemKey)
}

// GetState собирает фильтры и избранное карты для уже загруженного результата
func (uc *FilterStateUseCase) GetState(ctx context.Context, result *domain.MapLoadResult, defaultCategory string) (*domain.FilterState, error) {
	categories, err := uc.LoadActiveCategories(ctx, result.MapKey, defaultCategory, result.Categories)
	if err != nil {
		return nil, err
	}
	regions, err := uc.LoadActiveRegions(ctx, result.MapKey, result.UniqueRegions)
	if err != nil {
		return nil, err
	}
	favorites, err := uc.LoadFavorites(ctx, result.MapKey)
	if err != nil {
		return nil, err
	}

	return &domain.FilterState{
		MapKey:           result.MapKey,
		ActiveCategories: categories,
		ActiveRegions:    regions,
		Favorites:        favorites,
	}, nil
}

func (uc *FilterStateUseCase) toggle(ctx context.Context, key, value string) ([]string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	current, err := uc.get(ctx, key)
	if err != nil {
		return nil, err
	}

	next := make([]string, 0, len(current)+1)
	removed := false
	for _, v := range current {
		if v == value {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if !removed {
		next = append(next, value)
	}

	if err := uc.set(ctx, key, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (uc *FilterStateUseCase) get(ctx context.Context, key string) ([]string, error) {
	values, err := uc.stateRepo.GetList(ctx, key)
	if err != nil {
		uc.logger.Error("Failed to read filter state", zap.String("key", key), zap.Error(err))
		return nil, apperrors.ErrDatabaseError.WithDetails(map[string]interface{}{"key": key})
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func (uc *FilterStateUseCase) set(ctx context.Context, key string, values []string) error {
	if err := uc.stateRepo.SetList(ctx, key, values); err != nil {
		uc.logger.Error("Failed to save filter state", zap.String("key", key), zap.Error(err))
		return apperrors.ErrDatabaseError.WithDetails(map[string]interface{}{"key": key})
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
