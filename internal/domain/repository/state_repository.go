package repository

import "context"

// StateRepository - key-value хранилище списков строк (фильтры, избранное).
// Каждый список хранится целиком под ключом, включающим ключ карты.
type StateRepository interface {
	// GetList возвращает список по ключу; отсутствующий ключ даёт пустой список
	GetList(ctx context.Context, key string) ([]string, error)

	// SetList полностью заменяет список
	SetList(ctx context.Context, key string, values []string) error
}
