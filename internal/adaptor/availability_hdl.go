package adaptor

import (
	"net/http"
	"strconv"

	"resort-booking/internal/dto/request"
	"resort-booking/internal/dto/response"
	"resort-booking/internal/usecase"
	"resort-booking/pkg/utils"

	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	service usecase.AvailabilityService
	log     *zap.Logger
}

func NewAvailabilityHandler(service usecase.AvailabilityService, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log.With(zap.String("handler", "availability")),
	}
}

// CheckAvailability handles GET /api/availability (public)
func (h *AvailabilityHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", response.AvailabilityToResponse(result))
}

// CheckAvailabilityDetail handles GET /api/admin/availability (admin only)
func (h *AvailabilityHandler) CheckAvailabilityDetail(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "check availability detail")
		return
	}

	utils.ResponseSuccess(w, "success", response.AvailabilityToDetailResponse(result))
}

// Occupancy handles GET /api/admin/occupancy (admin only)
func (h *AvailabilityHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.OccupancyRequest{
		ResourceID: query.Get("resource_id"),
		Date:       query.Get("date"),
	}

	result, err := h.service.Occupancy(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get occupancy")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

func (h *AvailabilityHandler) parseQuery(w http.ResponseWriter, r *http.Request) (*request.AvailabilityRequest, bool) {
	query := r.URL.Query()
	req := &request.AvailabilityRequest{
		ResourceID: query.Get("resource_id"),
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
		Units:      1,
	}

	if raw := query.Get("units"); raw != "" {
		units, err := strconv.Atoi(raw)
		if err != nil {
			utils.ResponseBadRequest(w, "Invalid units", map[string]string{"units": "must be a whole number"})
			return nil, false
		}
		req.Units = units
	}
	return req, true
}
