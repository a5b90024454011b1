package customerservice

// Vehicle модель автомобиля из CustomerService
type Vehicle struct {
	ID           int64   `json:"id"`
	CustomerID   int64   `json:"customer_id"`
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	LicensePlate string  `json:"license_plate"`
	// Size класс автомобиля (compact, sedan, suv, van, truck)
	Size       string `json:"size"`
	IsSelected bool   `json:"is_selected"`
	// PaymentReference токен платёжного средства клиента; nil, если не привязано
	PaymentReference *string `json:"payment_reference,omitempty"`
}

// ErrorResponse модель ошибки от CustomerService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
