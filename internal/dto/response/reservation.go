package response

import (
	"time"

	"resort-booking/internal/data/entity"
)

type ReservationCreatedResponse struct {
	ReservationID      string                          `json:"reservation_id"`
	ConfirmationNumber string                          `json:"confirmation_number"`
	GuestID            string                          `json:"guest_id"`
	Status             entity.ReservationStatus        `json:"status"`
	PaymentStatus      entity.ReservationPaymentStatus `json:"payment_status"`
	TotalAmount        float64                         `json:"total_amount"`
	Currency           string                          `json:"currency"`
}

type ReservationItemResponse struct {
	ID         string          `json:"id"`
	Type       entity.ItemType `json:"type"`
	ResourceID string          `json:"resource_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  float64         `json:"unit_price"`
	Amount     float64         `json:"amount"`
	StartDate  string          `json:"start_date,omitempty"`
	EndDate    string          `json:"end_date,omitempty"`
}

type ReservationResponse struct {
	ID                 string                          `json:"id"`
	ConfirmationNumber string                          `json:"confirmation_number"`
	GuestID            string                          `json:"guest_id"`
	Status             entity.ReservationStatus        `json:"status"`
	PaymentStatus      entity.ReservationPaymentStatus `json:"payment_status"`
	TotalAmount        float64                         `json:"total_amount"`
	TotalPaid          float64                         `json:"total_paid"`
	Outstanding        float64                         `json:"outstanding"`
	Currency           string                          `json:"currency"`
	Notes              string                          `json:"notes,omitempty"`
	Items              []ReservationItemResponse       `json:"items"`
	Payments           []PaymentResponse               `json:"payments"`
	CreatedAt          time.Time                       `json:"created_at"`
	UpdatedAt          time.Time                       `json:"updated_at"`
}

func ReservationToCreatedResponse(r *entity.Reservation) ReservationCreatedResponse {
	return ReservationCreatedResponse{
		ReservationID:      r.ID.String(),
		ConfirmationNumber: r.ConfirmationNumber,
		GuestID:            r.GuestID.String(),
		Status:             r.Status,
		PaymentStatus:      r.PaymentStatus,
		TotalAmount:        r.TotalAmount,
		Currency:           r.Currency,
	}
}

func ReservationToResponse(r *entity.Reservation, payments []*entity.Payment) ReservationResponse {
	items := make([]ReservationItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		item := ReservationItemResponse{
			ID:         it.ID.String(),
			Type:       it.Type,
			ResourceID: it.ResourceID.String(),
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			Amount:     it.Amount,
		}
		if rng, ok := it.Range(); ok {
			item.StartDate = rng.Start.Format(entity.DateLayout)
			item.EndDate = rng.End.Format(entity.DateLayout)
		}
		items = append(items, item)
	}

	var paid float64
	pays := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		if p.Status == entity.PaymentStatusPaid {
			paid += p.Amount
		}
		pays = append(pays, PaymentToResponse(p))
	}
	paid = entity.RoundMoney(paid)

	return ReservationResponse{
		ID:                 r.ID.String(),
		ConfirmationNumber: r.ConfirmationNumber,
		GuestID:            r.GuestID.String(),
		Status:             r.Status,
		PaymentStatus:      r.PaymentStatus,
		TotalAmount:        r.TotalAmount,
		TotalPaid:          paid,
		Outstanding:        entity.RoundMoney(max(r.TotalAmount-paid, 0)),
		Currency:           r.Currency,
		Notes:              r.Notes,
		Items:              items,
		Payments:           pays,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
