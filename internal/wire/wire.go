// internal/wire/wire.go
package wire

import (
	"net/http"

	"resort-booking/internal/adaptor"
	"resort-booking/internal/usecase"
	"resort-booking/pkg/middleware"
	"resort-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds handlers over the assembled services and mounts the routes.
func Wiring(service *usecase.Service, config *utils.Config, logger *zap.Logger) *App {
	handler := adaptor.NewHandler(service, config, logger)

	return &App{
		Router:  setupRouter(handler, config, logger),
		Service: service,
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(handler *adaptor.Handler, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	admin := middleware.AdminToken(config.Admin.TokenHash, logger)

	wireAvailability(r, handler.Availability, admin)
	wireReservation(r, handler.Reservation, admin)
	wirePayment(r, handler.Payment, admin)
	wireChannel(r, handler.Channel)
	wireBlock(r, handler.Block, admin)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, "OK", nil)
	})

	return r
}
