package slotlock

import "errors"

var (
	// ErrLockHeld возвращается, когда блокировка уже удерживается другим владельцем
	ErrLockHeld = errors.New("slotlock.repository: lock is held by another holder")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slotlock.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slotlock.repository: failed to execute query")
)
