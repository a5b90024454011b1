package get_available_slots

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
	getSlots "github.com/m04kA/SMC-WashService/internal/usecase/get_available_slots"
)

// parseQuery разбирает query-параметры запроса доступных слотов.
//
// Параметры: date (YYYY-MM-DD, обязателен), serviceIds (список через запятую),
// durationMinutes, resourceType, vehicleSize, pickupLat, pickupLng.
func parseQuery(query url.Values) (*getSlots.Request, error) {
	dateStr := query.Get("date")
	if dateStr == "" {
		return nil, fmt.Errorf("date is required")
	}
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %v", err)
	}

	req := &getSlots.Request{Date: date}

	if raw := query.Get("serviceIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid service ID %q", part)
			}
			req.ServiceIDs = append(req.ServiceIDs, id)
		}
	}

	if raw := query.Get("durationMinutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid durationMinutes %q", raw)
		}
		req.DurationMinutes = minutes
	}

	if raw := query.Get("resourceType"); raw != "" {
		req.ResourceType = &raw
	}
	if raw := query.Get("vehicleSize"); raw != "" {
		req.VehicleSize = &raw
	}

	if raw := query.Get("pickupLat"); raw != "" {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid pickupLat %q", raw)
		}
		req.PickupLat = &lat
	}
	if raw := query.Get("pickupLng"); raw != "" {
		lng, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid pickupLng %q", raw)
		}
		req.PickupLng = &lng
	}

	return req, nil
}
