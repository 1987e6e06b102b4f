package repository

import "context"

// ByteProgressFunc получает количество прочитанных байт и общий размер (0 если неизвестен)
type ByteProgressFunc func(read, total int64)

// SourceRepository загружает исходные файлы карты (JSON, CSV) по URL или пути
type SourceRepository interface {
	// Fetch возвращает содержимое ресурса.
	// Отсутствующий ресурс возвращает errors.ErrSourceNotFound,
	// прочие сбои транспорта - errors.ErrSourceUnavailable.
	Fetch(ctx context.Context, location string, progress ByteProgressFunc) ([]byte, error)
}
