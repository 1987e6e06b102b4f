package executor

import (
	"encoding/json"
	"fmt"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/pipeline"
	"github.com/mapdata-service/internal/pkg/errors"
)

// HandleRequest выполняет запрос на стороне воркера.
// Ошибка всегда возвращается в ответе, запросы не зависят друг от друга.
func HandleRequest(req domain.PipelineRequest) domain.PipelineResponse {
	resp := domain.PipelineResponse{
		RequestID: req.RequestID,
		Op:        req.Op,
	}

	result, err := dispatchOp(req)
	if err != nil {
		resp.Error = toPipelineError(err)
		return resp
	}

	data, err := json.Marshal(result)
	if err != nil {
		resp.Error = toPipelineError(fmt.Errorf("failed to encode result: %w", err))
		return resp
	}
	resp.Result = data
	return resp
}

func dispatchOp(req domain.PipelineRequest) (interface{}, error) {
	switch req.Op {
	case domain.OpParseJSON:
		var p domain.ParseJSONPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return nil, badRequest(req.Op, err)
		}
		return pipeline.ParseItems(p.Raw)

	case domain.OpProcessRegionData:
		var p domain.RegionDataPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return nil, badRequest(req.Op, err)
		}
		return pipeline.ProcessRegions(p.Raw, p.Dictionary)

	case domain.OpProcessMapData:
		var in domain.MergeInput
		if err := json.Unmarshal(req.Payload, &in); err != nil {
			return nil, badRequest(req.Op, err)
		}
		return pipeline.Merge(in), nil

	case domain.OpProcessTranslations:
		var p domain.TranslationsPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return nil, badRequest(req.Op, err)
		}
		return pipeline.BuildTranslationTables(p.CSV...), nil

	default:
		return nil, errors.ErrInvalidRequest.WithMessage(fmt.Sprintf("unknown pipeline operation %q", req.Op))
	}
}

func badRequest(op domain.PipelineOp, err error) error {
	return errors.ErrInvalidRequest.WithMessage(fmt.Sprintf("malformed %s payload: %v", op, err))
}

func toPipelineError(err error) *domain.PipelineError {
	if appErr, ok := errors.As(err); ok {
		return &domain.PipelineError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}
	}
	return &domain.PipelineError{
		Code:    errors.ErrInternalServer.Code,
		Message: err.Error(),
	}
}

// fromPipelineError восстанавливает ошибку, пришедшую из воркера
func fromPipelineError(pe *domain.PipelineError) error {
	if pe.Code == errors.ErrInvalidPayload.Code {
		return errors.ErrInvalidPayload.WithMessage(pe.Message).WithDetails(pe.Details)
	}
	return fmt.Errorf("worker error %s: %s", pe.Code, pe.Message)
}
