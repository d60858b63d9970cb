package adaptor

import (
	"resort-booking/internal/usecase"
	"resort-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Availability *AvailabilityHandler
	Reservation  *ReservationHandler
	Payment      *PaymentHandler
	Channel      *ChannelHandler
	Block        *BlockHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Availability: NewAvailabilityHandler(service.Availability, log),
		Reservation:  NewReservationHandler(service.Reservation, log),
		Payment:      NewPaymentHandler(service.Payment, config.Payment.WebhookSecret, log),
		Channel:      NewChannelHandler(service.Sync, log),
		Block:        NewBlockHandler(service.Block, log),
	}
}
