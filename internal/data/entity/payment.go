package entity

import "time"

type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "initiated"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Settled statuses are final for a single attempt.
func (s PaymentStatus) Settled() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// Payment is one attempt to pay toward a reservation. GatewayRef is the
// idempotency key for gateway confirmations.
type Payment struct {
	ID            PaymentID     `db:"id"`
	ReservationID ReservationID `db:"reservation_id"`
	GatewayRef    string        `db:"gateway_ref"`
	Method        string        `db:"method"`
	Status        PaymentStatus `db:"status"`
	Amount        float64       `db:"amount"`
	Currency      string        `db:"currency"`
	FailureReason *string       `db:"failure_reason"`
	ProcessedAt   *time.Time    `db:"processed_at"`
	Timestamps
}
