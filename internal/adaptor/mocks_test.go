package adaptor

import (
	"context"

	"resort-booking/internal/data/entity"
	"resort-booking/internal/dto/request"
	"resort-booking/internal/dto/response"

	"github.com/stretchr/testify/mock"
)

// MockAvailabilityService is a mock implementation of usecase.AvailabilityService
type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) CheckAvailability(ctx context.Context, req *request.AvailabilityRequest) (*entity.Availability, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Availability), args.Error(1)
}

func (m *MockAvailabilityService) Occupancy(ctx context.Context, req *request.OccupancyRequest) (*response.OccupancyResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.OccupancyResponse), args.Error(1)
}

// MockReservationService is a mock implementation of usecase.ReservationService
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) CreateReservation(ctx context.Context, req *request.CreateReservationRequest) (*response.ReservationCreatedResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.ReservationCreatedResponse), args.Error(1)
}

func (m *MockReservationService) detail(ctx context.Context, method, id string) (*response.ReservationResponse, error) {
	args := m.MethodCalled(method, ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.ReservationResponse), args.Error(1)
}

func (m *MockReservationService) GetReservation(ctx context.Context, id string) (*response.ReservationResponse, error) {
	return m.detail(ctx, "GetReservation", id)
}

func (m *MockReservationService) GetReservationByConfirmation(ctx context.Context, number string) (*response.ReservationResponse, error) {
	return m.detail(ctx, "GetReservationByConfirmation", number)
}

func (m *MockReservationService) ConfirmReservation(ctx context.Context, id string) (*response.ReservationResponse, error) {
	return m.detail(ctx, "ConfirmReservation", id)
}

func (m *MockReservationService) CancelReservation(ctx context.Context, id string) (*response.ReservationResponse, error) {
	return m.detail(ctx, "CancelReservation", id)
}

func (m *MockReservationService) MarkNoShow(ctx context.Context, id string) (*response.ReservationResponse, error) {
	return m.detail(ctx, "MarkNoShow", id)
}

func (m *MockReservationService) CompleteReservation(ctx context.Context, id string) (*response.ReservationResponse, error) {
	return m.detail(ctx, "CompleteReservation", id)
}

// MockPaymentService is a mock implementation of usecase.PaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) result(args mock.Arguments) (*response.PaymentResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) InitiatePayment(ctx context.Context, reservationID string, req *request.InitiatePaymentRequest) (*response.PaymentResponse, error) {
	return m.result(m.Called(ctx, reservationID, req))
}

func (m *MockPaymentService) ConfirmPayment(ctx context.Context, req *request.PaymentCallbackRequest) (*response.PaymentResponse, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockPaymentService) ReconcilePayment(ctx context.Context, ref string) (*response.PaymentResponse, error) {
	return m.result(m.Called(ctx, ref))
}

// MockSyncService is a mock implementation of usecase.SyncService
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) ApplyEvent(ctx context.Context, eventType string, payload []byte, signature string) error {
	return m.Called(ctx, eventType, payload, signature).Error(0)
}

// MockBlockService is a mock implementation of usecase.BlockService
type MockBlockService struct {
	mock.Mock
}

func (m *MockBlockService) CreateBlock(ctx context.Context, req *request.CreateBlockRequest) (*response.BlockResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BlockResponse), args.Error(1)
}

func (m *MockBlockService) RevokeBlock(ctx context.Context, id string) (*response.BlockResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BlockResponse), args.Error(1)
}

func (m *MockBlockService) ListBlocks(ctx context.Context, req *request.ListBlocksRequest) (*response.PaginatedResponse[response.BlockResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.PaginatedResponse[response.BlockResponse]), args.Error(1)
}
