package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/pkg/errors"
)

// Transport доставляет запрос фоновому исполнителю и ждёт ответ с тем же RequestID
type Transport interface {
	// Name - режим, который сообщает WorkerExecutor.Mode
	Name() string

	// Available - проверка, можно ли сейчас отправлять запросы
	Available(ctx context.Context) bool

	Dispatch(ctx context.Context, req domain.PipelineRequest) (domain.PipelineResponse, error)
}

// WorkerExecutor выполняет операции через Transport.
// Любой сбой транспорта, сериализации или таймаут ведёт к повтору inline.
type WorkerExecutor struct {
	transport Transport
	fallback  *InlineExecutor
	timeout   time.Duration
	logger    *zap.Logger
}

func NewWorkerExecutor(transport Transport, timeout time.Duration, logger *zap.Logger) *WorkerExecutor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &WorkerExecutor{
		transport: transport,
		fallback:  NewInlineExecutor(),
		timeout:   timeout,
		logger:    logger,
	}
}

func (w *WorkerExecutor) Mode() string {
	return w.transport.Name()
}

func (w *WorkerExecutor) ParseJSON(ctx context.Context, raw []byte) ([]domain.RawItem, error) {
	return run(ctx, w, domain.OpParseJSON, domain.ParseJSONPayload{Raw: raw},
		func() ([]domain.RawItem, error) { return w.fallback.ParseJSON(ctx, raw) })
}

func (w *WorkerExecutor) ProcessRegionData(ctx context.Context, raw []byte, dict domain.TermDictionary) (*domain.RegionData, error) {
	return run(ctx, w, domain.OpProcessRegionData, domain.RegionDataPayload{Raw: raw, Dictionary: dict},
		func() (*domain.RegionData, error) { return w.fallback.ProcessRegionData(ctx, raw, dict) })
}

func (w *WorkerExecutor) ProcessMapData(ctx context.Context, in domain.MergeInput) (*domain.MapData, error) {
	return run(ctx, w, domain.OpProcessMapData, in,
		func() (*domain.MapData, error) { return w.fallback.ProcessMapData(ctx, in) })
}

func (w *WorkerExecutor) ProcessTranslations(ctx context.Context, csvs []string) (*domain.TranslationTables, error) {
	return run(ctx, w, domain.OpProcessTranslations, domain.TranslationsPayload{CSV: csvs},
		func() (*domain.TranslationTables, error) { return w.fallback.ProcessTranslations(ctx, csvs) })
}

// run отправляет операцию в транспорт и декодирует результат.
// Структурные ошибки возвращаются как есть, остальные поглощаются inline-повтором.
func run[T any](ctx context.Context, w *WorkerExecutor, op domain.PipelineOp, payload interface{}, inline func() (T, error)) (T, error) {
	var out T

	result, err := w.dispatch(ctx, op, payload)
	if err == nil {
		if err = json.Unmarshal(result, &out); err == nil {
			return out, nil
		}
		err = fmt.Errorf("failed to decode %s result: %w", op, err)
	}

	if errors.IsStructural(err) {
		return out, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}

	w.logger.Warn("Background execution failed, retrying inline",
		zap.String("transport", w.transport.Name()),
		zap.String("op", string(op)),
		zap.Error(err))
	return inline()
}

func (w *WorkerExecutor) dispatch(ctx context.Context, op domain.PipelineOp, payload interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", op, err)
	}

	req := domain.PipelineRequest{
		RequestID: uuid.New(),
		Op:        op,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	resp, err := w.transport.Dispatch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", op, err)
	}
	if resp.RequestID != req.RequestID {
		return nil, fmt.Errorf("response id %s does not match request %s", resp.RequestID, req.RequestID)
	}
	if resp.Error != nil {
		return nil, fromPipelineError(resp.Error)
	}

	w.logger.Debug("Pipeline operation completed in background",
		zap.String("transport", w.transport.Name()),
		zap.String("op", string(op)),
		zap.String("request_id", req.RequestID.String()),
		zap.Duration("duration", time.Since(start)))

	return resp.Result, nil
}
