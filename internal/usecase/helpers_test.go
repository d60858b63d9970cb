package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"resort-booking/internal/data/entity"
	"resort-booking/internal/data/repository"
	"resort-booking/internal/dto/request"
	"resort-booking/internal/dto/response"
	"resort-booking/pkg/utils"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	store        *memStore
	repo         *repository.Repository
	events       *MockPublisher
	gateway      *MockGateway
	settings     *staticSettings
	availability *availabilityService
	blocks       *blockService
	reservations *reservationService
	payments     *paymentService
	sync         *syncService
}

const testChannelSecret = "channel-secret"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	repo := newMemRepository(store)
	log := zap.NewNop()
	clock := func() time.Time { return testNow }

	events := &MockPublisher{}
	events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	gw := &MockGateway{}
	settings := &staticSettings{autoConfirm: true, currency: "IDR"}

	config := &utils.Config{
		Payment: utils.PaymentConfig{Epsilon: entity.DefaultPaymentEpsilon},
		Channel: utils.ChannelConfig{WebhookSecret: testChannelSecret},
	}

	env := &testEnv{
		store:    store,
		repo:     repo,
		events:   events,
		gateway:  gw,
		settings: settings,
	}

	env.availability = NewAvailabilityService(repo, log).(*availabilityService)
	env.availability.now = clock

	env.blocks = NewBlockService(repo, log).(*blockService)
	env.blocks.now = clock

	env.reservations = NewReservationService(repo, settings, events, log).(*reservationService)
	env.reservations.now = clock
	seq := 0
	env.reservations.newConfirmation = func(now time.Time) string {
		seq++
		return fmt.Sprintf("RSV-%s-%06d", now.Format("20060102"), seq)
	}

	env.payments = NewPaymentService(repo, gw, settings, events, config, log).(*paymentService)
	env.payments.now = clock

	env.sync = NewSyncService(repo, testChannelSecret, events, log).(*syncService)
	env.sync.now = clock

	return env
}

func accommodation(resource *entity.Resource, start, end string, qty int, price float64) request.ReservationItemRequest {
	return request.ReservationItemRequest{
		Type:       string(entity.ItemTypeAccommodation),
		ResourceID: resource.ID.String(),
		Quantity:   qty,
		UnitPrice:  price,
		StartDate:  start,
		EndDate:    end,
	}
}

func reservationRequest(email string, items ...request.ReservationItemRequest) *request.CreateReservationRequest {
	return &request.CreateReservationRequest{
		Guest: request.GuestRequest{Name: "Ayu Lestari", Email: email, Phone: "+628123456789"},
		Items: items,
	}
}

func (e *testEnv) book(t *testing.T, resource *entity.Resource, start, end string, qty int, price float64) *response.ReservationCreatedResponse {
	t.Helper()
	res, err := e.reservations.CreateReservation(context.Background(),
		reservationRequest("guest@example.com", accommodation(resource, start, end, qty, price)))
	require.NoError(t, err)
	return res
}

func (e *testEnv) check(t *testing.T, resource *entity.Resource, start, end string, units int) *entity.Availability {
	t.Helper()
	a, err := e.availability.CheckAvailability(context.Background(), &request.AvailabilityRequest{
		ResourceID: resource.ID.String(),
		StartDate:  start,
		EndDate:    end,
		Units:      units,
	})
	require.NoError(t, err)
	return a
}

// seedPayment inserts an initiated payment row directly, bypassing rounding.
func (e *testEnv) seedPayment(t *testing.T, reservationID string, ref string, amount float64) {
	t.Helper()
	id, err := entity.ParseID[entity.Reservation](reservationID)
	require.NoError(t, err)
	require.NoError(t, e.repo.Payment.Create(context.Background(), &entity.Payment{
		ID:            entity.NewID[entity.Payment](),
		ReservationID: id,
		GatewayRef:    ref,
		Method:        "card",
		Status:        entity.PaymentStatusInitiated,
		Amount:        amount,
		Currency:      "IDR",
	}))
}

func callback(ref string, amount float64, success bool) *request.PaymentCallbackRequest {
	return &request.PaymentCallbackRequest{
		GatewayRef: ref,
		Amount:     amount,
		Currency:   "IDR",
		Success:    &success,
	}
}

func (e *testEnv) reservationState(t *testing.T, reservationID string) entity.Reservation {
	t.Helper()
	id, err := entity.ParseID[entity.Reservation](reservationID)
	require.NoError(t, err)
	return e.store.reservation(id)
}

func (e *testEnv) publishedCount(key string) int {
	n := 0
	for _, c := range e.events.Calls {
		if c.Method == "Publish" && c.Arguments.String(1) == key {
			n++
		}
	}
	return n
}
