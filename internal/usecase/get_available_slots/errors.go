package get_available_slots

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга каталога не найдена или неактивна
	ErrServiceNotFound = errors.New("get_available_slots: service not found")

	// ErrDateTooFarInFuture возвращается, когда дата выходит за горизонт бронирования
	ErrDateTooFarInFuture = errors.New("get_available_slots: date is too far in the future")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
