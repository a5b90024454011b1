package notifyservice

// NotificationKind тип уведомления
type NotificationKind string

const (
	KindBookingCreated     NotificationKind = "booking_created"
	KindBookingConfirmed   NotificationKind = "booking_confirmed"
	KindBookingRescheduled NotificationKind = "booking_rescheduled"
	KindBookingCancelled   NotificationKind = "booking_cancelled"
	KindBookingNoShow      NotificationKind = "booking_no_show"
	KindBookingCompleted   NotificationKind = "booking_completed"
	KindLowRatingAlert     NotificationKind = "low_rating_alert"
)

// Notification уведомление для NotificationService
type Notification struct {
	BookingID int64            `json:"booking_id"`
	Kind      NotificationKind `json:"kind"`
	// RecipientID клиент или 0 для уведомлений менеджменту
	RecipientID int64  `json:"recipient_id"`
	Message     string `json:"message,omitempty"`
}
