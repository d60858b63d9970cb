package adaptor

import (
	"net/http"

	"resort-booking/internal/usecase"
	"resort-booking/pkg/utils"

	"go.uber.org/zap"
)

const (
	ChannelSignatureHeader = "X-Channel-Signature"
	ChannelEventHeader     = "X-Channel-Event"
)

type ChannelHandler struct {
	service usecase.SyncService
	log     *zap.Logger
}

func NewChannelHandler(service usecase.SyncService, log *zap.Logger) *ChannelHandler {
	return &ChannelHandler{
		service: service,
		log:     log.With(zap.String("handler", "channel")),
	}
}

// Webhook handles POST /api/webhooks/channel (external platform, signed).
// The signature covers the raw body, so it is read in full before parsing.
func (h *ChannelHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondBodyError(w, err)
		return
	}

	err = h.service.ApplyEvent(r.Context(), r.Header.Get(ChannelEventHeader), body, r.Header.Get(ChannelSignatureHeader))
	if err != nil {
		handleServiceError(w, h.log, err, "apply channel event")
		return
	}

	utils.ResponseSuccess(w, "accepted", nil)
}
