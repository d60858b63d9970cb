package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	EventReservationCreated   = "reservation.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationNoShow    = "reservation.no_show"
	EventReservationCompleted = "reservation.completed"
	// EventReservationOverbooked asks staff to review a paid reservation whose
	// inventory was taken before the payment settled.
	EventReservationOverbooked = "reservation.overbooked"
	EventPaymentPaid           = "payment.paid"
	EventPaymentFailed         = "payment.failed"
	EventExternalSynced        = "external_booking.synced"
)

type ReservationEvent struct {
	ReservationID      string    `json:"reservation_id"`
	ConfirmationNumber string    `json:"confirmation_number"`
	Status             string    `json:"status"`
	PaymentStatus      string    `json:"payment_status"`
	TotalAmount        float64   `json:"total_amount"`
	Currency           string    `json:"currency"`
	OccurredAt         time.Time `json:"occurred_at"`
}

type OverbookedEvent struct {
	ReservationEvent
	Shortfalls []Shortfall `json:"shortfalls"`
}

// Shortfall is one dated item that no longer fits its resource.
type Shortfall struct {
	ResourceID     string `json:"resource_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	RequestedUnits int    `json:"requested_units"`
	AvailableUnits int    `json:"available_units"`
	Blocked        bool   `json:"blocked"`
}

type PaymentEvent struct {
	PaymentID     string    `json:"payment_id"`
	ReservationID string    `json:"reservation_id"`
	GatewayRef    string    `json:"gateway_ref"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	TotalPaid     float64   `json:"total_paid,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type ExternalSyncEvent struct {
	Platform   string    `json:"platform"`
	ExternalID string    `json:"external_id"`
	ResourceID string    `json:"resource_id"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publish is best effort: the state change it reports is already committed.
func publish(ctx context.Context, pub EventPublisher, log *zap.Logger, key string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, key, payload); err != nil {
		log.Warn("Failed to publish event", zap.Error(err), zap.String("routing_key", key))
	}
}
