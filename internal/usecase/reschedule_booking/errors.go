package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrAccessDenied возвращается, когда пользователь не владелец бронирования
	ErrAccessDenied = errors.New("reschedule_booking: access denied")

	// ErrTooLateToBook возвращается при нарушении минимального времени до начала слота
	ErrTooLateToBook = errors.New("reschedule_booking: too late to book this slot")

	// ErrDateTooFarInFuture возвращается, когда дата выходит за горизонт бронирования
	ErrDateTooFarInFuture = errors.New("reschedule_booking: date is too far in the future")

	// ErrResourceUnavailable возвращается, когда ни один ресурс не может
	// обслужить новое окно
	ErrResourceUnavailable = errors.New("reschedule_booking: no resource available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
