package reservation

import "errors"

var (
	// ErrResourceUnavailable все кандидаты заняты или исчерпан общий таймаут конвейера
	ErrResourceUnavailable = errors.New("no resource available for requested window")
	// errSlotTaken кандидат занят конкурентом, обнаружено при повторной проверке под блокировкой
	errSlotTaken = errors.New("slot taken by concurrent reservation")
)
