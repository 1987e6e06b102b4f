package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mapdata-service/internal/domain"
	apperrors "github.com/mapdata-service/internal/pkg/errors"
)

// SessionState - снимок текущего выбора карты
type SessionState struct {
	MapKey   string
	Loading  bool
	Progress domain.Progress
	Result   *domain.MapLoadResult
	Error    error
}

// Session хранит выбранную карту. Результат загрузки применяется,
// только если карта всё ещё выбрана; устаревшие результаты отбрасываются.
type Session struct {
	mapData *MapDataUseCase
	logger  *zap.Logger

	mu         sync.RWMutex
	generation uint64
	mapKey     string
	loading    bool
	progress   domain.Progress
	result     *domain.MapLoadResult
	err        error
}

func NewSession(mapData *MapDataUseCase, logger *zap.Logger) *Session {
	return &Session{
		mapData: mapData,
		logger:  logger,
	}
}

// Select выбирает карту и загружает её данные.
// При ошибке выбор возвращается к последней успешно загруженной карте.
func (s *Session) Select(ctx context.Context, mapKey string) (*domain.MapLoadResult, error) {
	if _, err := s.mapData.GetMapConfig(mapKey); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mapKey = mapKey
	s.loading = true
	s.progress = domain.Progress{}
	s.err = nil
	s.mu.Unlock()

	result, err := s.mapData.LoadMap(ctx, mapKey, func(p domain.Progress) {
		s.mu.Lock()
		if s.generation == gen {
			s.progress = p
		}
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		s.logger.Info("Discarding stale map load", zap.String("map_key", mapKey))
		return nil, apperrors.ErrLoadSuperseded.WithDetails(map[string]interface{}{
			"map_key":  mapKey,
			"selected": s.mapKey,
		})
	}

	s.loading = false
	if err != nil {
		// предыдущее состояние остаётся нетронутым
		s.err = err
		s.mapKey = ""
		if s.result != nil {
			s.mapKey = s.result.MapKey
		}
		return nil, err
	}

	s.result = result
	s.progress = domain.Progress{Fraction: 1, Items: 1, Regions: 1}
	return result, nil
}

// Current возвращает снимок состояния сессии
func (s *Session) Current() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionState{
		MapKey:   s.mapKey,
		Loading:  s.loading,
		Progress: s.progress,
		Result:   s.result,
		Error:    s.err,
	}
}
