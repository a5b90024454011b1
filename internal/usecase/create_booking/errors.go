package create_booking

import "errors"

var (
	// ErrVehicleNotFound возвращается, когда у клиента нет выбранного автомобиля
	ErrVehicleNotFound = errors.New("create_booking: customer has no selected vehicle")

	// ErrServiceNotFound возвращается, когда услуга каталога не найдена или неактивна
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrTooLateToBook возвращается при нарушении минимального времени до начала слота
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrDateTooFarInFuture возвращается, когда дата выходит за горизонт бронирования
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrInvalidTimeSlot возвращается, когда время начала не лежит на сетке слотов
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrResourceUnavailable возвращается, когда ни один ресурс не может
	// обслужить запрошенное окно
	ErrResourceUnavailable = errors.New("create_booking: no resource available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
