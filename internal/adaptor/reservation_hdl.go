package adaptor

import (
	"context"
	"net/http"

	"resort-booking/internal/dto/request"
	"resort-booking/internal/dto/response"
	"resort-booking/internal/usecase"
	"resort-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewReservationHandler(service usecase.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log.With(zap.String("handler", "reservation")),
	}
}

// CreateReservation handles POST /api/reservations (public)
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req request.CreateReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBodyError(w, err)
		return
	}

	reservation, err := h.service.CreateReservation(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create reservation")
		return
	}

	utils.ResponseCreated(w, "success", reservation)
}

// GetByConfirmation handles GET /api/reservations/{confirmation} (public)
func (h *ReservationHandler) GetByConfirmation(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "confirmation")
	if number == "" {
		utils.ResponseBadRequest(w, "Confirmation number is required", nil)
		return
	}

	reservation, err := h.service.GetReservationByConfirmation(r.Context(), number)
	if err != nil {
		handleServiceError(w, h.log, err, "get reservation by confirmation")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// GetReservation handles GET /api/admin/reservations/{id} (admin only)
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.ResponseBadRequest(w, "Reservation ID is required", nil)
		return
	}

	reservation, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "get reservation")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// Confirm handles PUT /api/admin/reservations/{id}/confirm (admin only)
func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "confirm reservation", h.service.ConfirmReservation)
}

// Cancel handles PUT /api/admin/reservations/{id}/cancel (admin only)
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel reservation", h.service.CancelReservation)
}

// NoShow handles PUT /api/admin/reservations/{id}/no-show (admin only)
func (h *ReservationHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "mark no-show", h.service.MarkNoShow)
}

// Complete handles PUT /api/admin/reservations/{id}/complete (admin only)
func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "complete reservation", h.service.CompleteReservation)
}

func (h *ReservationHandler) transition(w http.ResponseWriter, r *http.Request, operation string,
	apply func(ctx context.Context, id string) (*response.ReservationResponse, error)) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.ResponseBadRequest(w, "Reservation ID is required", nil)
		return
	}

	reservation, err := apply(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}
