package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mapdata-service/internal/config"
	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/domain/repository"
	"github.com/mapdata-service/internal/executor"
	"github.com/mapdata-service/internal/pipeline"
	apperrors "github.com/mapdata-service/internal/pkg/errors"
)

// Веса файлов в общем прогрессе загрузки
const (
	itemsProgressWeight   = 0.7
	regionsProgressWeight = 0.3
)

// MapDataUseCase загружает и собирает данные карты
type MapDataUseCase struct {
	maps       []config.MapConfig
	sourceRepo repository.SourceRepository
	cacheRepo  repository.CacheRepository
	exec       executor.Executor
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewMapDataUseCase создает новый экземпляр MapDataUseCase.
// cacheRepo может быть nil - тогда результаты не кешируются.
func NewMapDataUseCase(
	maps []config.MapConfig,
	sourceRepo repository.SourceRepository,
	cacheRepo repository.CacheRepository,
	exec executor.Executor,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *MapDataUseCase {
	return &MapDataUseCase{
		maps:       maps,
		sourceRepo: sourceRepo,
		cacheRepo:  cacheRepo,
		exec:       exec,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// ListMaps возвращает каталог карт
func (uc *MapDataUseCase) ListMaps() []config.MapConfig {
	return uc.maps
}

// GetMapConfig возвращает конфигурацию карты по ключу
func (uc *MapDataUseCase) GetMapConfig(mapKey string) (config.MapConfig, error) {
	for _, m := range uc.maps {
		if m.Key == mapKey {
			return m, nil
		}
	}
	return config.MapConfig{}, apperrors.ErrMapNotFound.WithDetails(map[string]interface{}{
		"map_key": mapKey,
	})
}

// ExecutorMode - режим, в котором выполняется пайплайн
func (uc *MapDataUseCase) ExecutorMode() string {
	return uc.exec.Mode()
}

// LoadMap возвращает данные карты из кеша или загружает их заново
func (uc *MapDataUseCase) LoadMap(ctx context.Context, mapKey string, progress domain.ProgressFunc) (*domain.MapLoadResult, error) {
	cfg, err := uc.GetMapConfig(mapKey)
	if err != nil {
		return nil, err
	}

	if cached := uc.cached(ctx, mapKey); cached != nil {
		if progress != nil {
			progress(domain.Progress{Fraction: 1, Items: 1, Regions: 1})
		}
		return cached, nil
	}

	result, err := uc.load(ctx, cfg, progress)
	if err != nil {
		return nil, err
	}

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.SetMapResult(ctx, result, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to cache map data", zap.String("map_key", mapKey), zap.Error(err))
		}
	}
	return result, nil
}

// InvalidateMap удаляет закешированный результат карты
func (uc *MapDataUseCase) InvalidateMap(ctx context.Context, mapKey string) error {
	if _, err := uc.GetMapConfig(mapKey); err != nil {
		return err
	}
	if uc.cacheRepo == nil {
		return nil
	}
	if err := uc.cacheRepo.DeleteMapResult(ctx, mapKey); err != nil {
		return apperrors.ErrCacheError.WithDetails(map[string]interface{}{"reason": err.Error()})
	}
	return nil
}

// GetCategoryItems возвращает отсортированную группу предметов категории
func (uc *MapDataUseCase) GetCategoryItems(ctx context.Context, mapKey, categoryID string) ([]domain.ProcessedItem, error) {
	result, err := uc.LoadMap(ctx, mapKey, nil)
	if err != nil {
		return nil, err
	}

	items, ok := result.ItemsByCategory[categoryID]
	if !ok {
		return nil, apperrors.ErrCategoryNotFound.WithDetails(map[string]interface{}{
			"map_key":  mapKey,
			"category": categoryID,
		})
	}
	return items, nil
}

func (uc *MapDataUseCase) cached(ctx context.Context, mapKey string) *domain.MapLoadResult {
	if uc.cacheRepo == nil {
		return nil
	}
	result, err := uc.cacheRepo.GetMapResult(ctx, mapKey)
	if err != nil {
		uc.logger.Warn("Failed to get map data from cache", zap.String("map_key", mapKey), zap.Error(err))
		return nil
	}
	if result != nil {
		result.Cached = true
		uc.logger.Debug("Map data fetched from cache", zap.String("map_key", mapKey))
	}
	return result
}

func (uc *MapDataUseCase) load(ctx context.Context, cfg config.MapConfig, progress domain.ProgressFunc) (*domain.MapLoadResult, error) {
	start := time.Now()
	logger := uc.logger.With(zap.String("map_key", cfg.Key), zap.String("executor", uc.exec.Mode()))
	logger.Info("Loading map data")

	// 1. Переводы загружаются строго до merge
	tables, err := uc.loadTranslations(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// 2. Предметы, регионы и список исключений загружаются параллельно
	tracker := newProgressTracker(progress)
	var (
		items   []domain.RawItem
		regions *domain.RegionData
		missing = domain.KeySet{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := uc.sourceRepo.Fetch(gctx, cfg.ItemsURL, tracker.items)
		if err != nil {
			return datasetError(pipeline.DatasetItems, err)
		}
		items, err = uc.exec.ParseJSON(gctx, raw)
		return err
	})
	g.Go(func() error {
		raw, err := uc.sourceRepo.Fetch(gctx, cfg.RegionsURL, tracker.regions)
		if err != nil {
			return datasetError(pipeline.DatasetRegions, err)
		}
		regions, err = uc.exec.ProcessRegionData(gctx, raw, tables.Dictionary)
		return err
	})
	if cfg.MissingItemsURL != "" {
		g.Go(func() error {
			raw, err := uc.sourceRepo.Fetch(gctx, cfg.MissingItemsURL, nil)
			if err != nil {
				logger.Warn("Missing items list unavailable, nothing excluded", zap.Error(err))
				return nil
			}
			missing = pipeline.ParseMissingItems(string(raw))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Map load failed", zap.Error(err))
		return nil, err
	}

	// 3. Merge
	mapData, err := uc.exec.ProcessMapData(ctx, domain.MergeInput{
		Items:               items,
		RegionIDMap:         regions.RegionIDMap,
		Polygons:            regions.Polygons,
		MissingItems:        missing,
		Translations:        tables,
		ReverseRegionMap:    regions.ReverseRegionMap,
		DefaultDescriptions: cfg.DescriptionMap(),
	})
	if err != nil {
		return nil, fmt.Errorf("merge map data: %w", err)
	}

	pipeline.SortGroups(mapData.ItemsByCategory)

	result := &domain.MapLoadResult{
		MapKey:           cfg.Key,
		Categories:       mapData.Categories,
		Items:            mapData.Items,
		ItemsByCategory:  mapData.ItemsByCategory,
		RegionMetaInfo:   regions.RegionMetaInfo,
		ReverseRegionMap: regions.ReverseRegionMap,
		Regions:          regions.Titles,
		UniqueRegions:    uniqueRegions(regions.Titles, mapData.Items),
		Bounds:           regions.Bounds,
		Mode:             uc.exec.Mode(),
		LoadedAt:         time.Now().UTC(),
	}
	result.Stats = domain.LoadStats{
		RawItems:        len(items),
		ExcludedItems:   len(items) - len(mapData.Items),
		ProcessedItems:  len(mapData.Items),
		TranslatedItems: countTranslated(mapData.Items),
		Categories:      len(mapData.Categories),
		Regions:         len(result.UniqueRegions),
		Duration:        time.Since(start),
	}

	logger.Info("Map data loaded",
		zap.Int("items", result.Stats.ProcessedItems),
		zap.Int("excluded", result.Stats.ExcludedItems),
		zap.Int("translated", result.Stats.TranslatedItems),
		zap.Int("categories", result.Stats.Categories),
		zap.Duration("duration", result.Stats.Duration))

	return result, nil
}

// loadTranslations загружает основной и дополнительный CSV; отсутствие любого из них - предупреждение
func (uc *MapDataUseCase) loadTranslations(ctx context.Context, cfg config.MapConfig, logger *zap.Logger) (*domain.TranslationTables, error) {
	var csvs []string
	for _, location := range []string{cfg.TranslationURL, cfg.SupplementalTranslationURL} {
		if location == "" {
			continue
		}
		raw, err := uc.sourceRepo.Fetch(ctx, location, nil)
		if err != nil {
			logger.Warn("Translation file unavailable", zap.String("location", location), zap.Error(err))
			continue
		}
		csvs = append(csvs, string(raw))
	}

	tables, err := uc.exec.ProcessTranslations(ctx, csvs)
	if err != nil {
		return nil, fmt.Errorf("build translation tables: %w", err)
	}
	return tables, nil
}

// datasetError добавляет к ошибке источника имя набора данных
func datasetError(dataset string, err error) error {
	appErr, ok := apperrors.As(err)
	if !ok {
		return apperrors.ErrSourceUnavailable.WithDetails(map[string]interface{}{
			"dataset": dataset,
			"reason":  err.Error(),
		})
	}

	details := make(map[string]interface{}, len(appErr.Details)+1)
	for k, v := range appErr.Details {
		details[k] = v
	}
	details["dataset"] = dataset
	return appErr.WithMessage(fmt.Sprintf("Failed to load %s: %s", dataset, appErr.Message)).WithDetails(details)
}

// uniqueRegions - объединение названий регионов и регионов предметов
func uniqueRegions(titles []string, items []domain.ProcessedItem) []string {
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		set[t] = struct{}{}
	}
	for _, item := range items {
		if item.Region != "" {
			set[item.Region] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func countTranslated(items []domain.ProcessedItem) int {
	n := 0
	for _, item := range items {
		if item.IsTranslated {
			n++
		}
	}
	return n
}

// progressTracker сводит прогресс двух загрузок в одно значение
type progressTracker struct {
	mu       sync.Mutex
	report   domain.ProgressFunc
	progress domain.Progress
}

func newProgressTracker(report domain.ProgressFunc) *progressTracker {
	return &progressTracker{report: report}
}

func (t *progressTracker) items(read, total int64) {
	t.update(read, total, func(p *domain.Progress, f float64) { p.Items = f })
}

func (t *progressTracker) regions(read, total int64) {
	t.update(read, total, func(p *domain.Progress, f float64) { p.Regions = f })
}

func (t *progressTracker) update(read, total int64, set func(*domain.Progress, float64)) {
	if t.report == nil || total <= 0 {
		return
	}
	f := float64(read) / float64(total)
	if f > 1 {
		f = 1
	}

	// отчёт под мьютексом: значения приходят вызывающему по порядку
	t.mu.Lock()
	defer t.mu.Unlock()
	set(&t.progress, f)
	t.progress.Fraction = itemsProgressWeight*t.progress.Items + regionsProgressWeight*t.progress.Regions
	t.report(t.progress)
}
