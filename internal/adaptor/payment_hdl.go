package adaptor

import (
	"encoding/json"
	"net/http"

	"resort-booking/internal/dto/request"
	"resort-booking/internal/usecase"
	"resort-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const PaymentSignatureHeader = "X-Payment-Signature"

type PaymentHandler struct {
	service       usecase.PaymentService
	webhookSecret string
	log           *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, webhookSecret string, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		webhookSecret: webhookSecret,
		log:           log.With(zap.String("handler", "payment")),
	}
}

// InitiatePayment handles POST /api/reservations/{id}/payments (public)
func (h *PaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "id")
	if reservationID == "" {
		utils.ResponseBadRequest(w, "Reservation ID is required", nil)
		return
	}

	var req request.InitiatePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBodyError(w, err)
		return
	}

	payment, err := h.service.InitiatePayment(r.Context(), reservationID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "initiate payment")
		return
	}

	utils.ResponseCreated(w, "success", payment)
}

// Callback handles POST /api/webhooks/payments (gateway, signed)
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondBodyError(w, err)
		return
	}

	if !utils.VerifySignature(h.webhookSecret, body, r.Header.Get(PaymentSignatureHeader)) {
		h.log.Warn("Rejected payment callback with invalid signature", zap.String("remote_addr", r.RemoteAddr))
		utils.ResponseUnauthorized(w, "Invalid signature")
		return
	}

	var req request.PaymentCallbackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	payment, err := h.service.ConfirmPayment(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "confirm payment")
		return
	}

	utils.ResponseSuccess(w, "success", payment)
}

// Reconcile handles POST /api/admin/payments/{ref}/reconcile (admin only)
func (h *PaymentHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if ref == "" {
		utils.ResponseBadRequest(w, "Gateway reference is required", nil)
		return
	}

	payment, err := h.service.ReconcilePayment(r.Context(), ref)
	if err != nil {
		handleServiceError(w, h.log, err, "reconcile payment")
		return
	}

	utils.ResponseSuccess(w, "success", payment)
}
