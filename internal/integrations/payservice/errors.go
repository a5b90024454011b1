package payservice

import "errors"

var (
	// ErrChargeDeclined возвращается, когда платёжный сервис отклонил списание
	ErrChargeDeclined = errors.New("payservice: charge declined")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("payservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("payservice client: invalid response")
)
