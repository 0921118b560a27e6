package repository

import "errors"

var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("not found")

	// ErrConflict условие атомарного обновления не выполнилось
	ErrConflict = errors.New("conflict")

	// ErrDuplicate нарушена уникальность (например, два слота на одно время)
	ErrDuplicate = errors.New("duplicate")
)
