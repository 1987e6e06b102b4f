package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamPipelineRequest = "stream:pipeline:request"
	StreamPipelineDone    = "stream:pipeline:done"
)

// PipelineOp - операция пайплайна, которую можно выполнить в фоне
type PipelineOp string

const (
	OpParseJSON           PipelineOp = "parseJSON"
	OpProcessRegionData   PipelineOp = "processRegionData"
	OpProcessMapData      PipelineOp = "processMapData"
	OpProcessTranslations PipelineOp = "processTranslations"
)

// PipelineRequest - запрос к фоновому исполнителю.
// Запросы независимы: воркер не хранит состояние между ними.
type PipelineRequest struct {
	RequestID uuid.UUID       `json:"request_id"`
	Op        PipelineOp      `json:"op"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// PipelineResponse - ответ воркера, связанный с запросом по RequestID
type PipelineResponse struct {
	RequestID uuid.UUID       `json:"request_id"`
	Op        PipelineOp      `json:"op"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *PipelineError  `json:"error,omitempty"`
}

// PipelineError - ошибка, переданная через границу воркера
type PipelineError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ParseJSONPayload - вход операции parseJSON
type ParseJSONPayload struct {
	Raw []byte `json:"raw"`
}

// RegionDataPayload - вход операции processRegionData
type RegionDataPayload struct {
	Raw        []byte         `json:"raw"`
	Dictionary TermDictionary `json:"dictionary"`
}

// TranslationsPayload - вход операции processTranslations: основной CSV и дополнительные
type TranslationsPayload struct {
	CSV []string `json:"csv"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
