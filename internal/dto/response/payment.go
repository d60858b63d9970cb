package response

import (
	"time"

	"resort-booking/internal/data/entity"
)

type PaymentResponse struct {
	ID            string               `json:"id"`
	ReservationID string               `json:"reservation_id"`
	GatewayRef    string               `json:"gateway_ref"`
	Method        string               `json:"method"`
	Status        entity.PaymentStatus `json:"status"`
	Amount        float64              `json:"amount"`
	Currency      string               `json:"currency"`
	FailureReason *string              `json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time           `json:"processed_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		ReservationID: p.ReservationID.String(),
		GatewayRef:    p.GatewayRef,
		Method:        p.Method,
		Status:        p.Status,
		Amount:        p.Amount,
		Currency:      p.Currency,
		FailureReason: p.FailureReason,
		ProcessedAt:   p.ProcessedAt,
		CreatedAt:     p.CreatedAt,
	}
}
