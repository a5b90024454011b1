package customerservice

import "errors"

var (
	// ErrVehicleNotFound возвращается, когда у клиента нет выбранного автомобиля
	ErrVehicleNotFound = errors.New("customer has no selected vehicle")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("customerservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("customerservice client: invalid response")
)
