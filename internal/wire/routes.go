package wire

import (
	"net/http"

	"resort-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

type middlewareFunc = func(http.Handler) http.Handler

func wireAvailability(r chi.Router, h *adaptor.AvailabilityHandler, admin middlewareFunc) {
	// GET /api/availability - coarse verdict for guests (public)
	r.Get("/api/availability", h.CheckAvailability)

	r.Group(func(r chi.Router) {
		r.Use(admin)

		// GET /api/admin/availability - verdict with conflict provenance
		r.Get("/api/admin/availability", h.CheckAvailabilityDetail)

		// GET /api/admin/occupancy - units taken per channel on one night
		r.Get("/api/admin/occupancy", h.Occupancy)
	})
}

func wireReservation(r chi.Router, h *adaptor.ReservationHandler, admin middlewareFunc) {
	r.Post("/api/reservations", h.CreateReservation)
	r.Get("/api/reservations/{confirmation}", h.GetByConfirmation)

	r.Route("/api/admin/reservations", func(r chi.Router) {
		r.Use(admin)

		r.Get("/{id}", h.GetReservation)
		r.Put("/{id}/confirm", h.Confirm)
		r.Put("/{id}/cancel", h.Cancel)
		r.Put("/{id}/no-show", h.NoShow)
		r.Put("/{id}/complete", h.Complete)
	})
}

func wirePayment(r chi.Router, h *adaptor.PaymentHandler, admin middlewareFunc) {
	// POST /api/reservations/{id}/payments - start a payment attempt (public)
	r.Post("/api/reservations/{id}/payments", h.InitiatePayment)

	// POST /api/webhooks/payments - gateway verdicts, HMAC signed
	r.Post("/api/webhooks/payments", h.Callback)

	r.With(admin).Post("/api/admin/payments/{ref}/reconcile", h.Reconcile)
}

func wireChannel(r chi.Router, h *adaptor.ChannelHandler) {
	// POST /api/webhooks/channel - external platform events, HMAC signed
	r.Post("/api/webhooks/channel", h.Webhook)
}

func wireBlock(r chi.Router, h *adaptor.BlockHandler, admin middlewareFunc) {
	r.Route("/api/admin/blocks", func(r chi.Router) {
		r.Use(admin)

		r.Post("/", h.CreateBlock)
		r.Get("/", h.ListBlocks)
		r.Delete("/{id}", h.RevokeBlock)
	})
}
