package forum

import "errors"

var (
	ErrPostNotFound = errors.New("post not found")
	ErrAlreadyLiked = errors.New("already liked")
	// ErrNotPersisted означает, что изменение применено в памяти, но не сохранено в хранилище
	ErrNotPersisted  = errors.New("changes were not persisted")
	ErrInvalidImport = errors.New("invalid data format")
)
