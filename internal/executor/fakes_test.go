package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mapdata-service/internal/domain"
)

// memoryStreams - Redis Streams в памяти. При consumers > 0 каждое сообщение
// в стрим запросов сразу обрабатывается HandleRequest, как это делает воркер.
type memoryStreams struct {
	mu        sync.Mutex
	seq       int
	streams   map[string][]domain.StreamMessage
	consumers int
	probeErr  error
	// respond=false имитирует воркер, который не отвечает
	respond bool
	// mutate позволяет подменить ответ перед публикацией
	mutate func(*domain.PipelineResponse)
}

func newMemoryStreams(consumers int) *memoryStreams {
	return &memoryStreams{
		streams:   make(map[string][]domain.StreamMessage),
		consumers: consumers,
		respond:   true,
	}
}

func (m *memoryStreams) ConsumeBatch(context.Context, string, string, string, int) ([]domain.StreamMessage, error) {
	return nil, nil
}

func (m *memoryStreams) ReadAfter(ctx context.Context, stream, lastID string, count int, block time.Duration) ([]domain.StreamMessage, error) {
	deadline := time.Now().Add(block)
	for {
		m.mu.Lock()
		var out []domain.StreamMessage
		for _, msg := range m.streams[stream] {
			if idAfter(msg.ID, lastID) {
				out = append(out, msg)
			}
			if len(out) == count {
				break
			}
		}
		m.mu.Unlock()

		if len(out) > 0 {
			return out, nil
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (m *memoryStreams) LastID(_ context.Context, stream string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.streams[stream]
	if len(msgs) == 0 {
		return "0-0", nil
	}
	return msgs[len(msgs)-1].ID, nil
}

func (m *memoryStreams) ConsumerCount(context.Context, string, string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consumers, m.probeErr
}

func (m *memoryStreams) AckMessage(context.Context, string, string, string) error { return nil }

func (m *memoryStreams) AckMessages(context.Context, string, string, []string) error { return nil }

func (m *memoryStreams) CreateConsumerGroup(context.Context, string, string) error { return nil }

func (m *memoryStreams) PublishToStream(_ context.Context, stream string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.append(stream, string(raw))
	respond, mutate := m.respond && m.consumers > 0, m.mutate
	m.mu.Unlock()

	if stream != domain.StreamPipelineRequest || !respond {
		return nil
	}

	var req domain.PipelineRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return err
	}
	go func() {
		resp := HandleRequest(req)
		if mutate != nil {
			mutate(&resp)
		}
		out, _ := json.Marshal(resp)
		m.mu.Lock()
		m.append(domain.StreamPipelineDone, string(out))
		m.mu.Unlock()
	}()
	return nil
}

func (m *memoryStreams) append(stream, data string) {
	m.seq++
	m.streams[stream] = append(m.streams[stream], domain.StreamMessage{
		ID:   fmt.Sprintf("%d-0", m.seq),
		Data: data,
	})
}

func idAfter(id, lastID string) bool {
	var a, b int
	fmt.Sscanf(id, "%d-", &a)
	fmt.Sscanf(lastID, "%d-", &b)
	return a > b
}

// failingTransport всегда возвращает ошибку доставки
type failingTransport struct {
	calls int
	err   error
}

func (f *failingTransport) Name() string                   { return "failing" }
func (f *failingTransport) Available(context.Context) bool { return true }

func (f *failingTransport) Dispatch(context.Context, domain.PipelineRequest) (domain.PipelineResponse, error) {
	f.calls++
	return domain.PipelineResponse{}, f.err
}

// scriptedTransport возвращает заранее заданный ответ
type scriptedTransport struct {
	respond func(req domain.PipelineRequest) domain.PipelineResponse
}

func (s *scriptedTransport) Name() string                   { return "scripted" }
func (s *scriptedTransport) Available(context.Context) bool { return true }

func (s *scriptedTransport) Dispatch(_ context.Context, req domain.PipelineRequest) (domain.PipelineResponse, error) {
	return s.respond(req), nil
}
