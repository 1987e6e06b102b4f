// Package executor runs the map-data pipeline either inline or through a
// background worker. Both strategies expose the same operations and return the
// same results; background failures fall back to inline execution.
package executor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mapdata-service/internal/domain"
)

// Execution modes
const (
	ModeInline = "inline"
	ModeWorker = "worker"
	ModeStream = "stream"
	ModeAuto   = "auto"
)

// DefaultTimeout ограничивает ожидание ответа фонового исполнителя
const DefaultTimeout = 30 * time.Second

// Executor - четыре операции пайплайна
type Executor interface {
	// Mode возвращает фактический режим выполнения
	Mode() string

	ParseJSON(ctx context.Context, raw []byte) ([]domain.RawItem, error)
	ProcessRegionData(ctx context.Context, raw []byte, dict domain.TermDictionary) (*domain.RegionData, error)
	ProcessMapData(ctx context.Context, in domain.MergeInput) (*domain.MapData, error)
	ProcessTranslations(ctx context.Context, csvs []string) (*domain.TranslationTables, error)
}

// New выбирает исполнитель по режиму.
// auto: stream, если транспорт доступен, иначе горутина; worker/stream без доступного транспорта - inline.
func New(ctx context.Context, mode string, stream Transport, timeout time.Duration, logger *zap.Logger) Executor {
	inline := NewInlineExecutor()

	switch mode {
	case ModeInline:
		return inline
	case ModeWorker:
		return NewWorkerExecutor(NewGoroutineTransport(), timeout, logger)
	case ModeStream:
		if stream != nil && stream.Available(ctx) {
			return NewWorkerExecutor(stream, timeout, logger)
		}
		logger.Warn("Stream executor unavailable, using inline execution")
		return inline
	case ModeAuto, "":
		if stream != nil && stream.Available(ctx) {
			logger.Info("Pipeline workers detected, using stream executor")
			return NewWorkerExecutor(stream, timeout, logger)
		}
		return NewWorkerExecutor(NewGoroutineTransport(), timeout, logger)
	default:
		logger.Warn("Unknown executor mode, using inline execution", zap.String("mode", mode))
		return inline
	}
}
