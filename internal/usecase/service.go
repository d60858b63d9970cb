package usecase

import (
	"resort-booking/internal/data/repository"
	"resort-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Availability AvailabilityService
	Block        BlockService
	Reservation  ReservationService
	Payment      PaymentService
	Sync         SyncService
}

// Deps are the outbound collaborators shared by the services.
type Deps struct {
	Settings SettingsProvider
	Events   EventPublisher
	Gateway  PaymentGateway
}

func NewService(repo *repository.Repository, deps Deps, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Availability: NewAvailabilityService(repo, log),
		Block:        NewBlockService(repo, log),
		Reservation:  NewReservationService(repo, deps.Settings, deps.Events, log),
		Payment:      NewPaymentService(repo, deps.Gateway, deps.Settings, deps.Events, config, log),
		Sync:         NewSyncService(repo, config.Channel.WebhookSecret, deps.Events, log),
	}
}
