package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mapdata-service/internal/domain"
)

// GoroutineTransport выполняет каждый запрос в отдельной горутине.
// Запрос и ответ проходят через JSON, как и при удалённом исполнителе.
type GoroutineTransport struct{}

func NewGoroutineTransport() *GoroutineTransport {
	return &GoroutineTransport{}
}

func (t *GoroutineTransport) Name() string {
	return ModeWorker
}

func (t *GoroutineTransport) Available(context.Context) bool {
	return true
}

func (t *GoroutineTransport) Dispatch(ctx context.Context, req domain.PipelineRequest) (domain.PipelineResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return domain.PipelineResponse{}, fmt.Errorf("failed to encode request: %w", err)
	}

	type outcome struct {
		data []byte
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("worker panic: %v", r)}
			}
		}()

		var in domain.PipelineRequest
		if err := json.Unmarshal(data, &in); err != nil {
			done <- outcome{err: fmt.Errorf("failed to decode request: %w", err)}
			return
		}
		out, err := json.Marshal(HandleRequest(in))
		done <- outcome{data: out, err: err}
	}()

	select {
	case <-ctx.Done():
		return domain.PipelineResponse{}, ctx.Err()
	case o := <-done:
		if o.err != nil {
			return domain.PipelineResponse{}, o.err
		}
		var resp domain.PipelineResponse
		if err := json.Unmarshal(o.data, &resp); err != nil {
			return domain.PipelineResponse{}, fmt.Errorf("failed to decode response: %w", err)
		}
		return resp, nil
	}
}
