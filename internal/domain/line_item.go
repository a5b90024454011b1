package domain

// ServiceLineItem is one wash service within a booking: a reference to the
// catalog service plus the price and duration captured at booking time.
// Line items are owned by their booking and mutable only while it is pending.
type ServiceLineItem struct {
	ID                  int64
	ServiceID           int64
	Name                string
	UnitPrice           float64
	UnitDurationMinutes int
	Quantity            int
}

// TotalPrice returns unit price multiplied by quantity
func (i ServiceLineItem) TotalPrice() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// TotalDurationMinutes returns unit duration multiplied by quantity
func (i ServiceLineItem) TotalDurationMinutes() int {
	return i.UnitDurationMinutes * i.Quantity
}
