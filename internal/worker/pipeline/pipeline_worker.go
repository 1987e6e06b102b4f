package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/domain/repository"
	"github.com/mapdata-service/internal/executor"
	"github.com/mapdata-service/internal/worker"
)

const (
	maxBatchSize    = 10                     // запросы пайплайна тяжёлые, берём немного
	emptyQueueSleep = 100 * time.Millisecond // пауза если очередь пуста
	errorSleep      = time.Second
)

// PipelineWorker выполняет запросы пайплайна из stream:pipeline:request
// и публикует ответы в stream:pipeline:done
type PipelineWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	handle       func(domain.PipelineRequest) domain.PipelineResponse
	consumerName string
	maxRetries   int
}

// NewPipelineWorker создает новый PipelineWorker
func NewPipelineWorker(
	streamRepo repository.StreamRepository,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *PipelineWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	if maxRetries < 1 {
		maxRetries = 1
	}

	return &PipelineWorker{
		BaseWorker:   worker.NewBaseWorker("pipeline", consumerGroup, logger),
		streamRepo:   streamRepo,
		handle:       executor.HandleRequest,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

// WithConsumerName задаёт имя консьюмера (по умолчанию hostname-pid)
func (w *PipelineWorker) WithConsumerName(name string) *PipelineWorker {
	w.consumerName = name
	return w
}

// Start запускает воркер
func (w *PipelineWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting PipelineWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_batch_size", maxBatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamPipelineRequest, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.ProcessBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				w.Pause(ctx, errorSleep)
				continue
			}

			if processed == 0 {
				w.Pause(ctx, emptyQueueSleep)
			}
		}
	}
}

// ProcessBatch читает и выполняет batch запросов.
// Возвращает количество прочитанных сообщений.
func (w *PipelineWorker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	// 1. Читаем batch
	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamPipelineRequest,
		w.ConsumerGroup(),
		w.consumerName,
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil
	}

	logger.Debug("Processing batch", zap.Int("message_count", len(messages)))

	ackIDs := make([]string, 0, len(messages))
	for _, msg := range messages {
		// 2. Битые сообщения подтверждаем и пропускаем, чтобы не застревали
		req, err := parseMessage(msg)
		if err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			_ = w.streamRepo.AckMessage(ctx, domain.StreamPipelineRequest, w.ConsumerGroup(), msg.ID)
			w.MarkSkipped()
			continue
		}

		// 3. Выполняем операцию
		start := time.Now()
		resp := w.handle(req)
		if resp.Error != nil {
			w.MarkFailed()
			logger.Warn("Pipeline operation failed",
				zap.String("request_id", req.RequestID.String()),
				zap.String("op", string(req.Op)),
				zap.String("code", resp.Error.Code))
		} else {
			w.MarkProcessed()
		}

		// 4. Публикуем ответ; если не удалось - не подтверждаем, запрос будет переобработан
		if err := w.publish(ctx, resp); err != nil {
			logger.Error("Failed to publish response",
				zap.String("request_id", req.RequestID.String()),
				zap.Error(err))
			continue
		}

		logger.Debug("Pipeline request done",
			zap.String("request_id", req.RequestID.String()),
			zap.String("op", string(req.Op)),
			zap.Duration("duration", time.Since(start)))
		ackIDs = append(ackIDs, msg.ID)
	}

	// 5. ACK выполненных запросов
	if len(ackIDs) > 0 {
		if err := w.streamRepo.AckMessages(ctx, domain.StreamPipelineRequest, w.ConsumerGroup(), ackIDs); err != nil {
			logger.Error("Failed to ack messages", zap.Error(err))
		}
	}

	return len(messages), nil
}

func (w *PipelineWorker) publish(ctx context.Context, resp domain.PipelineResponse) error {
	var err error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if err = w.streamRepo.PublishToStream(ctx, domain.StreamPipelineDone, resp); err == nil {
			return nil
		}
		if attempt < w.maxRetries && !w.Pause(ctx, time.Duration(attempt)*50*time.Millisecond) {
			break
		}
	}
	return err
}

// parseMessage парсит сообщение из стрима в PipelineRequest
func parseMessage(msg domain.StreamMessage) (domain.PipelineRequest, error) {
	var req domain.PipelineRequest
	if msg.Data == "" {
		return req, fmt.Errorf("missing 'data' field")
	}
	if err := json.Unmarshal([]byte(msg.Data), &req); err != nil {
		return req, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	if req.Op == "" {
		return req, fmt.Errorf("request has no op")
	}
	return req, nil
}
