package remove_service

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WashService/internal/api/handlers"
	"github.com/m04kA/SMC-WashService/internal/api/middleware"
	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/internal/service/bookings"
	"github.com/m04kA/SMC-WashService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID  = "некорректный ID бронирования"
	msgInvalidLineItemID = "некорректный ID позиции заказа"
	msgNotFound          = "бронирование не найдено"
	msgLineItemNotFound  = "позиция заказа не найдена"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgForbidden         = "доступ запрещен"
	msgStateConflict     = "состав услуг можно менять только до подтверждения"
	msgLastLineItem      = "нельзя удалить последнюю позицию заказа"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/bookings/{bookingId}/services/{lineItemId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /bookings/{id}/services/{itemId} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	lineItemID, err := strconv.ParseInt(vars["lineItemId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /bookings/{id}/services/{itemId} - Invalid line item ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLineItemID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /bookings/{id}/services/{itemId} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.RemoveService(r.Context(), bookingID, &models.RemoveServiceRequest{
		ActorID:    userID,
		LineItemID: lineItemID,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("DELETE /bookings/{id}/services/{itemId} - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrLineItemNotFound):
			h.logger.Warn("DELETE /bookings/{id}/services/{itemId} - Line item not found: booking_id=%d, line_item_id=%d", bookingID, lineItemID)
			handlers.RespondNotFound(w, msgLineItemNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("DELETE /bookings/{id}/services/{itemId} - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrLastLineItem):
			h.logger.Warn("DELETE /bookings/{id}/services/{itemId} - Last line item: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgLastLineItem)

		case errors.Is(err, domain.ErrStateConflict):
			h.logger.Warn("DELETE /bookings/{id}/services/{itemId} - State conflict: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondConflict(w, msgStateConflict)

		default:
			h.logger.Error("DELETE /bookings/{id}/services/{itemId} - Failed to remove service: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /bookings/{id}/services/{itemId} - Service removed: booking_id=%d, line_item_id=%d", bookingID, lineItemID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
