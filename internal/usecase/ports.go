package usecase

import (
	"context"

	"resort-booking/pkg/gateway"
)

// EventPublisher delivers domain events after the owning transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type PaymentGateway interface {
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
	RetrieveCharge(ctx context.Context, chargeID string) (*gateway.Charge, error)
}

// SettingsProvider serves slow-changing business policy. It is never read on
// the conflict or ledger arithmetic paths.
type SettingsProvider interface {
	AutoConfirmOnFullPayment(ctx context.Context) bool
	DefaultCurrency(ctx context.Context) string
}
