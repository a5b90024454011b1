package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrServiceNotFound возвращается, когда услуга каталога не найдена или неактивна
	ErrServiceNotFound = errors.New("service not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrGraceNotElapsed возвращается при попытке зафиксировать неявку
	// до истечения льготного периода после начала слота
	ErrGraceNotElapsed = errors.New("no-show grace period has not elapsed")

	// ErrAlreadyRated возвращается при повторной оценке заказа
	ErrAlreadyRated = errors.New("booking has already been rated")

	// ErrLastLineItem возвращается при попытке удалить последнюю позицию заказа
	ErrLastLineItem = errors.New("booking must keep at least one line item")

	// ErrTooManyLineItems возвращается при превышении лимита позиций заказа
	ErrTooManyLineItems = errors.New("too many line items")

	// ErrLineItemNotFound возвращается, когда позиция заказа не найдена
	ErrLineItemNotFound = errors.New("line item not found")

	// ErrWindowConflict возвращается, когда увеличенная длительность заказа
	// задевает соседнее бронирование на том же ресурсе
	ErrWindowConflict = errors.New("extended duration conflicts with another booking")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
