package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/domain/repository"
)

const (
	listenBatch = 50
	listenBlock = time.Second
	// listenRetryDelay - пауза после ошибки чтения стрима
	listenRetryDelay = time.Second
)

// StreamTransport отправляет запросы удалённым воркерам через Redis Streams.
// Один слушатель читает стрим ответов и отдаёт каждый ответ ожидающему запросу.
type StreamTransport struct {
	streams repository.StreamRepository
	group   string
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]chan domain.PipelineResponse
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewStreamTransport(streams repository.StreamRepository, group string, logger *zap.Logger) *StreamTransport {
	return &StreamTransport{
		streams: streams,
		group:   group,
		logger:  logger,
		pending: make(map[uuid.UUID]chan domain.PipelineResponse),
	}
}

func (t *StreamTransport) Name() string {
	return ModeStream
}

// Available проверяет доступность Redis и наличие хотя бы одного воркера в группе
func (t *StreamTransport) Available(ctx context.Context) bool {
	count, err := t.streams.ConsumerCount(ctx, domain.StreamPipelineRequest, t.group)
	if err != nil {
		t.logger.Debug("Stream transport probe failed", zap.Error(err))
		return false
	}
	return count > 0
}

// Start запоминает текущий конец стрима ответов и запускает слушателя
func (t *StreamTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}

	lastID, err := t.streams.LastID(ctx, domain.StreamPipelineDone)
	if err != nil {
		return fmt.Errorf("failed to start stream transport: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	t.started = true

	go t.listen(listenCtx, lastID)

	t.logger.Info("Stream transport started",
		zap.String("group", t.group),
		zap.String("last_id", lastID))
	return nil
}

// Close останавливает слушателя и отменяет все ожидающие запросы
func (t *StreamTransport) Close() {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return
	}
	t.started = false
	cancel, done := t.cancel, t.done
	for id, ch := range t.pending {
		close(ch)
		delete(t.pending, id)
	}
	t.mu.Unlock()

	cancel()
	<-done
}

func (t *StreamTransport) Dispatch(ctx context.Context, req domain.PipelineRequest) (domain.PipelineResponse, error) {
	ch := make(chan domain.PipelineResponse, 1)

	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return domain.PipelineResponse{}, fmt.Errorf("stream transport is not started")
	}
	t.pending[req.RequestID] = ch
	t.mu.Unlock()

	defer t.forget(req.RequestID)

	if err := t.streams.PublishToStream(ctx, domain.StreamPipelineRequest, req); err != nil {
		return domain.PipelineResponse{}, err
	}

	select {
	case <-ctx.Done():
		return domain.PipelineResponse{}, ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return domain.PipelineResponse{}, fmt.Errorf("stream transport closed")
		}
		return resp, nil
	}
}

func (t *StreamTransport) forget(id uuid.UUID) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

func (t *StreamTransport) listen(ctx context.Context, lastID string) {
	defer close(t.done)

	for {
		if ctx.Err() != nil {
			return
		}

		messages, err := t.streams.ReadAfter(ctx, domain.StreamPipelineDone, lastID, listenBatch, listenBlock)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.logger.Error("Failed to read pipeline responses", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(listenRetryDelay):
			}
			continue
		}

		for _, msg := range messages {
			lastID = msg.ID
			t.route(msg)
		}
	}
}

func (t *StreamTransport) route(msg domain.StreamMessage) {
	var resp domain.PipelineResponse
	if err := json.Unmarshal([]byte(msg.Data), &resp); err != nil {
		t.logger.Warn("Skipping malformed pipeline response",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return
	}

	t.mu.Lock()
	ch, ok := t.pending[resp.RequestID]
	if ok {
		delete(t.pending, resp.RequestID)
	}
	t.mu.Unlock()

	// ответ на чужой или уже отменённый запрос
	if !ok {
		return
	}
	ch <- resp
}
