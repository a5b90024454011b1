package add_services

import (
	"context"

	"github.com/m04kA/SMC-WashService/internal/service/bookings/models"
)

type BookingService interface {
	AddServices(ctx context.Context, bookingID int64, req *models.AddServicesRequest) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
