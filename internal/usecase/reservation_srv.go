package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resort-booking/internal/data/entity"
	"resort-booking/internal/data/repository"
	"resort-booking/internal/dto/request"
	"resort-booking/internal/dto/response"
	"resort-booking/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const maxConfirmationAttempts = 5

type ReservationService interface {
	CreateReservation(ctx context.Context, req *request.CreateReservationRequest) (*response.ReservationCreatedResponse, error)
	GetReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error)
	GetReservationByConfirmation(ctx context.Context, number string) (*response.ReservationResponse, error)

	// Staff transitions
	ConfirmReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error)
	CancelReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error)
	MarkNoShow(ctx context.Context, reservationID string) (*response.ReservationResponse, error)
	CompleteReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error)
}

type reservationService struct {
	repo            *repository.Repository
	settings        SettingsProvider
	events          EventPublisher
	now             func() time.Time
	newConfirmation func(time.Time) string
	log             *zap.Logger
}

func NewReservationService(repo *repository.Repository, settings SettingsProvider, events EventPublisher, log *zap.Logger) ReservationService {
	return &reservationService{
		repo:            repo,
		settings:        settings,
		events:          events,
		now:             time.Now,
		newConfirmation: utils.GenerateConfirmationNumber,
		log:             log.With(zap.String("service", "reservation")),
	}
}

func (s *reservationService) CreateReservation(ctx context.Context, req *request.CreateReservationRequest) (resp *response.ReservationCreatedResponse, err error) {
	ctx, span := tracer.Start(ctx, "reservation.create")
	defer func() { endSpan(span, err) }()

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create reservation validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	now := s.now().UTC()
	reservation := &entity.Reservation{
		ID:            entity.NewID[entity.Reservation](),
		Status:        entity.ReservationStatusPending,
		PaymentStatus: entity.ReservationPaymentPending,
		Currency:      strings.ToUpper(req.Currency),
		Notes:         req.Notes,
		Timestamps:    entity.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if reservation.Currency == "" {
		reservation.Currency = s.settings.DefaultCurrency(ctx)
	}

	items, err := s.buildItems(ctx, reservation.ID, req.Items, now)
	if err != nil {
		return nil, err
	}
	reservation.Items = items
	for _, it := range items {
		reservation.TotalAmount += it.Amount
	}
	reservation.TotalAmount = entity.RoundMoney(reservation.TotalAmount)

	guest := &entity.Guest{
		Name:  strings.TrimSpace(req.Guest.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Guest.Email)),
		Phone: strings.TrimSpace(req.Guest.Phone),
	}

	for attempt := 1; attempt <= maxConfirmationAttempts; attempt++ {
		reservation.ConfirmationNumber = s.newConfirmation(now)
		err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
			guest.ID = entity.NewID[entity.Guest]()
			guest.Timestamps = entity.Timestamps{CreatedAt: now, UpdatedAt: now}
			if err := tx.Guest.Upsert(ctx, guest); err != nil {
				return err
			}
			reservation.GuestID = guest.ID

			if err := tx.Reservation.Create(ctx, reservation); err != nil {
				return err
			}
			return tx.ReservationItem.CreateBatch(ctx, items)
		})
		if !errors.Is(err, repository.ErrDuplicateConfirmation) {
			break
		}
		s.log.Warn("Retrying reservation with a new confirmation number",
			zap.Int("attempt", attempt),
			zap.String("confirmation_number", reservation.ConfirmationNumber),
		)
	}
	if err != nil {
		s.log.Error("Failed to create reservation", zap.Error(err), zap.String("guest_email", guest.Email))
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	span.SetAttributes(
		attribute.String("reservation.id", reservation.ID.String()),
		attribute.Float64("reservation.total", reservation.TotalAmount),
	)

	s.log.Info("Reservation created",
		zap.Stringer("reservation_id", reservation.ID),
		zap.String("confirmation_number", reservation.ConfirmationNumber),
		zap.Stringer("guest_id", reservation.GuestID),
		zap.Int("item_count", len(items)),
		zap.Float64("total_amount", reservation.TotalAmount),
	)

	publish(ctx, s.events, s.log, EventReservationCreated, reservationEvent(reservation, now))

	created := response.ReservationToCreatedResponse(reservation)
	return &created, nil
}

// buildItems prices each requested line. Availability is not re-checked here.
func (s *reservationService) buildItems(ctx context.Context, reservationID entity.ReservationID, reqs []request.ReservationItemRequest, now time.Time) ([]*entity.ReservationItem, error) {
	known := make(map[entity.ResourceID]bool)
	items := make([]*entity.ReservationItem, 0, len(reqs))

	for i, r := range reqs {
		resourceID, err := entity.ParseID[entity.Resource](r.ResourceID)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: invalid resource id %s", ErrValidation, i, r.ResourceID)
		}

		if !known[resourceID] {
			resource, err := s.repo.Resource.FindByID(ctx, resourceID)
			if err != nil {
				return nil, fmt.Errorf("find resource %s: %w", resourceID, err)
			}
			if resource == nil || !resource.IsActive {
				return nil, fmt.Errorf("%w: item %d: unknown resource %s", ErrValidation, i, resourceID)
			}
			known[resourceID] = true
		}

		item := &entity.ReservationItem{
			ID:            entity.NewID[entity.ReservationItem](),
			ReservationID: reservationID,
			Type:          entity.ItemType(r.Type),
			ResourceID:    resourceID,
			Quantity:      r.Quantity,
			UnitPrice:     r.UnitPrice,
			CreatedAt:     now,
		}

		switch {
		case r.StartDate != "" || r.EndDate != "":
			rng, err := entity.ParseDateRange(r.StartDate, r.EndDate)
			if err != nil {
				return nil, fmt.Errorf("%w: item %d: %v", ErrValidation, i, err)
			}
			item.StartDate, item.EndDate = &rng.Start, &rng.End
		case item.Type == entity.ItemTypeAccommodation:
			return nil, fmt.Errorf("%w: item %d: accommodation needs start_date and end_date", ErrValidation, i)
		}

		item.Amount = item.ComputeAmount()
		if item.Amount <= 0 {
			return nil, fmt.Errorf("%w: item %d: amount must be positive", ErrValidation, i)
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *reservationService) GetReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error) {
	id, err := entity.ParseID[entity.Reservation](reservationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid reservation id %s", ErrValidation, reservationID)
	}

	reservation, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find reservation %s: %w", id, err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return s.buildDetail(ctx, reservation)
}

func (s *reservationService) GetReservationByConfirmation(ctx context.Context, number string) (*response.ReservationResponse, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, fmt.Errorf("%w: confirmation number is required", ErrValidation)
	}

	reservation, err := s.repo.Reservation.FindByConfirmationNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("find reservation %s: %w", number, err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %s: %w", number, ErrNotFound)
	}
	return s.buildDetail(ctx, reservation)
}

func (s *reservationService) buildDetail(ctx context.Context, reservation *entity.Reservation) (*response.ReservationResponse, error) {
	items, err := s.repo.ReservationItem.FindByReservationID(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("load items for %s: %w", reservation.ID, err)
	}
	reservation.Items = items

	payments, err := s.repo.Payment.FindByReservationID(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("load payments for %s: %w", reservation.ID, err)
	}

	resp := response.ReservationToResponse(reservation, payments)
	return &resp, nil
}

func (s *reservationService) ConfirmReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error) {
	return s.transition(ctx, reservationID, entity.ReservationStatusConfirmed, EventReservationConfirmed)
}

func (s *reservationService) CancelReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error) {
	return s.transition(ctx, reservationID, entity.ReservationStatusCancelled, EventReservationCancelled)
}

func (s *reservationService) MarkNoShow(ctx context.Context, reservationID string) (*response.ReservationResponse, error) {
	return s.transition(ctx, reservationID, entity.ReservationStatusNoShow, EventReservationNoShow)
}

func (s *reservationService) CompleteReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error) {
	return s.transition(ctx, reservationID, entity.ReservationStatusCompleted, EventReservationCompleted)
}

// transition applies an explicit staff transition with the reservation row
// locked. Re-applying the status the reservation already has is a no-op.
func (s *reservationService) transition(ctx context.Context, reservationID string, next entity.ReservationStatus, eventKey string) (resp *response.ReservationResponse, err error) {
	ctx, span := tracer.Start(ctx, "reservation.transition")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("reservation.id", reservationID), attribute.String("status.next", string(next)))

	id, err := entity.ParseID[entity.Reservation](reservationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid reservation id %s", ErrValidation, reservationID)
	}

	now := s.now().UTC()
	var (
		reservation *entity.Reservation
		changed     bool
	)
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		res, err := tx.Reservation.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res == nil {
			return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
		}
		reservation = res

		if res.Status == next {
			return nil
		}
		if err := res.ApplyTransition(next, now); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		changed = true
		return tx.Reservation.UpdateStatus(ctx, res)
	})
	if err != nil {
		s.log.Warn("Reservation transition rejected",
			zap.Error(err),
			zap.String("reservation_id", reservationID),
			zap.String("next", string(next)),
		)
		return nil, fmt.Errorf("move reservation %s to %s: %w", id, next, err)
	}

	if changed {
		s.log.Info("Reservation status changed",
			zap.Stringer("reservation_id", id),
			zap.String("confirmation_number", reservation.ConfirmationNumber),
			zap.String("status", string(next)),
		)
		publish(ctx, s.events, s.log, eventKey, reservationEvent(reservation, now))
	}

	return s.buildDetail(ctx, reservation)
}

func reservationEvent(r *entity.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		ReservationID:      r.ID.String(),
		ConfirmationNumber: r.ConfirmationNumber,
		Status:             string(r.Status),
		PaymentStatus:      string(r.PaymentStatus),
		TotalAmount:        r.TotalAmount,
		Currency:           r.Currency,
		OccurredAt:         at,
	}
}
