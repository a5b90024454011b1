package domain

// Line item bounds
const (
	MinLineItems = 1
	MaxLineItems = 10
)

// Derived duration bounds, minutes
const (
	MinBookingDurationMinutes = 30
	MaxBookingDurationMinutes = 240
)

// MaxEstimatedPrice is the upper bound for a booking quote, currency units
const MaxEstimatedPrice = 10000.0

// Default scheduling parameters
const (
	DefaultMinLeadTimeMinutes     = 120 // earliest a booking may start after "now"
	DefaultBookingHorizonDays     = 90  // latest a booking may be scheduled
	DefaultSlotGranularityMinutes = 30
	DefaultBufferMinutes          = 15 // mandatory idle time between bookings on one resource
	DefaultNoShowGraceMinutes     = 30
)

// Default fee parameters
const (
	DefaultOvertimeRatePerMinute = 1.0
	DefaultLateCancelHours       = 24 // less notice than this: 100% fee
	DefaultFreeCancelHours       = 48 // at least this much notice: no fee; 0 disables the free tier
)

// Rating bounds
const (
	MinRating          = 1
	MaxRating          = 5
	LowRatingThreshold = 2 // ratings at or below raise a management alert
	MaxFeedbackLength  = 1000
)

const (
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, не занимающих слот на ресурсе
// Используется при подсчёте конфликтов по времени
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusNoShow,
}

// ActiveStatuses список статусов, занимающих слот на ресурсе
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
}
