package storage

import (
	"context"
	"errors"
)

// Хорошо известные ключи форума
const (
	DataKey        = "anonforum_data"
	LikedKey       = "anonforum_liked"
	DraftKeyPrefix = "anonforum_draft_"
)

var ErrNotFound = errors.New("key not found")

// Backend - синхронное key-value хранилище строк.
// Get возвращает ErrNotFound, если ключа нет. Remove отсутствующего ключа не ошибка.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// DraftKey возвращает ключ черновика для поля формы
func DraftKey(field string) string {
	return DraftKeyPrefix + field
}
