package repository

import (
	"context"
	"time"

	"github.com/mapdata-service/internal/domain"
)

// StreamRepository - интерфейс для работы с Redis Streams
type StreamRepository interface {
	// ConsumeBatch читает до count сообщений через consumer group без долгой блокировки
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error)

	// ReadAfter читает сообщения после lastID без consumer group (блокируется не дольше block)
	ReadAfter(ctx context.Context, stream, lastID string, count int, block time.Duration) ([]domain.StreamMessage, error)

	// LastID возвращает ID последнего сообщения стрима ("0-0" для пустого)
	LastID(ctx context.Context, stream string) (string, error)

	// ConsumerCount возвращает число консьюмеров в группе (0 если группы нет)
	ConsumerCount(ctx context.Context, stream, group string) (int, error)

	// AckMessage подтверждает обработку сообщения
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// AckMessages подтверждает обработку нескольких сообщений
	AckMessages(ctx context.Context, stream, group string, messageIDs []string) error

	// CreateConsumerGroup создаёт consumer group
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// PublishToStream публикует сообщение в стрим
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
