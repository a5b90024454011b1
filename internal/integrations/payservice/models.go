package payservice

// ChargeKind назначение платежа
type ChargeKind string

const (
	ChargeCancellationFee ChargeKind = "cancellation_fee"
	ChargeNoShowFee       ChargeKind = "no_show_fee"
	ChargeOvertimeFee     ChargeKind = "overtime_fee"
)

// ChargeRequest запрос на списание штрафа или доплаты
type ChargeRequest struct {
	BookingID int64 `json:"booking_id"`
	// PaymentReference токен платёжного средства клиента
	PaymentReference string     `json:"payment_reference"`
	Kind             ChargeKind `json:"kind"`
	Amount           float64    `json:"amount"`
}

// ChargeResponse результат списания
type ChargeResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// ErrorResponse модель ошибки от PaymentService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
