package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resort-booking/internal/data/entity"
	"resort-booking/internal/data/repository"
	"resort-booking/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type SyncService interface {
	// ApplyEvent verifies and applies one external platform event. Duplicates,
	// stale events and unmapped bookings are accepted without effect.
	ApplyEvent(ctx context.Context, eventType string, payload []byte, signature string) error
}

type syncService struct {
	repo   *repository.Repository
	secret string
	events EventPublisher
	now    func() time.Time
	log    *zap.Logger
}

func NewSyncService(repo *repository.Repository, secret string, events EventPublisher, log *zap.Logger) SyncService {
	return &syncService{
		repo:   repo,
		secret: secret,
		events: events,
		now:    time.Now,
		log:    log.With(zap.String("service", "sync")),
	}
}

var errUnmapped = errors.New("no local resource mapping")

func (s *syncService) ApplyEvent(ctx context.Context, eventType string, payload []byte, signature string) (err error) {
	ctx, span := tracer.Start(ctx, "sync.apply_event")
	defer func() { endSpan(span, err) }()

	if !utils.VerifySignature(s.secret, payload, signature) {
		s.log.Warn("Rejected channel event with invalid signature", zap.String("event_type", eventType))
		return ErrInvalidSignature
	}

	event, err := ParseChannelEvent(eventType, payload)
	if err != nil {
		s.log.Warn("Rejected malformed channel event", zap.Error(err), zap.String("event_type", eventType))
		return err
	}

	meta := event.Meta()
	span.SetAttributes(
		attribute.String("channel.platform", meta.Platform),
		attribute.String("channel.external_id", meta.ExternalID),
		attribute.String("channel.event_id", meta.EventID),
	)
	log := s.log.With(
		zap.String("platform", meta.Platform),
		zap.String("external_id", meta.ExternalID),
		zap.String("event_id", meta.EventID),
	)

	var (
		booking *entity.ExternalBooking
		action  string
	)
	switch ev := event.(type) {
	case BookingCreated:
		booking, action, err = s.applyCreated(ctx, ev)
	case BookingUpdated:
		booking, action, err = s.applyUpdated(ctx, ev)
	case BookingCancelled:
		booking, action, err = s.applyCancelled(ctx, ev)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEventType, event)
	}

	if errors.Is(err, errUnmapped) {
		log.Warn("Dropped channel event without a local resource mapping", zap.Error(err))
		return nil
	}
	if err != nil {
		log.Error("Failed to apply channel event", zap.Error(err))
		return fmt.Errorf("apply %s/%s: %w", meta.Platform, meta.ExternalID, err)
	}

	if booking == nil {
		log.Info("Channel event skipped", zap.String("reason", action))
		return nil
	}

	log.Info("Channel event applied",
		zap.String("action", action),
		zap.String("status", string(booking.Status)),
		zap.Stringer("resource_id", booking.ResourceID),
	)
	publish(ctx, s.events, s.log, EventExternalSynced, ExternalSyncEvent{
		Platform:   booking.Platform,
		ExternalID: booking.ExternalID,
		ResourceID: booking.ResourceID.String(),
		Action:     action,
		Status:     string(booking.Status),
		OccurredAt: meta.OccurredAt,
	})
	return nil
}

func (s *syncService) resolveResource(ctx context.Context, platform string, b ChannelBooking) (entity.ResourceID, error) {
	resource, err := s.repo.Resource.FindByChannelMapping(ctx, platform, b.PropertyCode, b.RoomCode)
	if err != nil {
		return entity.ResourceID{}, err
	}
	if resource == nil {
		return entity.ResourceID{}, fmt.Errorf("%w: %s/%s", errUnmapped, b.PropertyCode, b.RoomCode)
	}
	return resource.ID, nil
}

func (s *syncService) newBooking(meta EventMeta, resourceID entity.ResourceID, b ChannelBooking, status entity.ExternalBookingStatus) *entity.ExternalBooking {
	now := s.now().UTC()
	return &entity.ExternalBooking{
		ID:         entity.NewID[entity.ExternalBooking](),
		Platform:   meta.Platform,
		ExternalID: meta.ExternalID,
		ResourceID: resourceID,
		StartDate:  b.Stay.Start,
		EndDate:    b.Stay.End,
		Units:      b.Units,
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		GuestPhone: b.GuestPhone,
		Amount:     b.Amount,
		Currency:   b.Currency,
		Status:     status,
		LastSyncAt: meta.OccurredAt,
		Timestamps: entity.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
}

// admit locks the external id for the rest of the transaction and reports
// whether a created or updated event may bring the booking to life. A
// cancellation recorded before the booking arrived wins over anything not
// newer than it.
func admit(ctx context.Context, tx *repository.Repository, meta EventMeta) (bool, error) {
	if err := tx.ExternalBooking.LockExternalID(ctx, meta.Platform, meta.ExternalID); err != nil {
		return false, err
	}
	cancelledAt, err := tx.ExternalBooking.FindTombstone(ctx, meta.Platform, meta.ExternalID)
	if err != nil {
		return false, err
	}
	return cancelledAt == nil || meta.OccurredAt.After(*cancelledAt), nil
}

// linkReservation resolves the local reservation a channel booking refers to.
// An unknown confirmation number leaves the booking unlinked.
func (s *syncService) linkReservation(ctx context.Context, tx *repository.Repository, meta EventMeta, b ChannelBooking) (*entity.ReservationID, error) {
	if b.Confirmation == "" {
		return nil, nil
	}
	reservation, err := tx.Reservation.FindByConfirmationNumber(ctx, b.Confirmation)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		s.log.Warn("Channel booking refers to an unknown confirmation number",
			zap.String("platform", meta.Platform),
			zap.String("external_id", meta.ExternalID),
			zap.String("confirmation_number", b.Confirmation),
		)
		return nil, nil
	}
	return &reservation.ID, nil
}

// applyCreated inserts the booking keyed by (platform, external id). A
// redelivered event finds the row already there and is skipped.
func (s *syncService) applyCreated(ctx context.Context, ev BookingCreated) (*entity.ExternalBooking, string, error) {
	resourceID, err := s.resolveResource(ctx, ev.Platform, ev.Booking)
	if err != nil {
		return nil, "", err
	}

	booking := s.newBooking(ev.EventMeta, resourceID, ev.Booking, entity.ExternalBookingConfirmed)
	var (
		result *entity.ExternalBooking
		action string
	)
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		ok, err := admit(ctx, tx, ev.EventMeta)
		if err != nil {
			return err
		}
		if !ok {
			action = "cancelled earlier"
			return nil
		}

		if booking.ReservationID, err = s.linkReservation(ctx, tx, ev.EventMeta, ev.Booking); err != nil {
			return err
		}
		inserted, err := tx.ExternalBooking.Insert(ctx, booking)
		if err != nil {
			return err
		}
		if !inserted {
			action = "duplicate"
			return nil
		}
		result, action = booking, "created"
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return result, action, nil
}

// applyUpdated overwrites the booking when the event is newer than the last
// sync. An update for an unknown booking inserts it, since its created
// delivery was lost.
func (s *syncService) applyUpdated(ctx context.Context, ev BookingUpdated) (*entity.ExternalBooking, string, error) {
	resourceID, err := s.resolveResource(ctx, ev.Platform, ev.Booking)
	if err != nil {
		return nil, "", err
	}

	var (
		result *entity.ExternalBooking
		action string
	)
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		ok, err := admit(ctx, tx, ev.EventMeta)
		if err != nil {
			return err
		}

		existing, err := tx.ExternalBooking.FindByExternalIDForUpdate(ctx, ev.Platform, ev.ExternalID)
		if err != nil {
			return err
		}

		if existing == nil {
			if !ok {
				action = "cancelled earlier"
				return nil
			}
			booking := s.newBooking(ev.EventMeta, resourceID, ev.Booking, entity.ExternalBookingModified)
			if booking.ReservationID, err = s.linkReservation(ctx, tx, ev.EventMeta, ev.Booking); err != nil {
				return err
			}
			inserted, err := tx.ExternalBooking.Insert(ctx, booking)
			if err != nil {
				return err
			}
			if inserted {
				result, action = booking, "created"
			} else {
				action = "duplicate"
			}
			return nil
		}

		if !ev.OccurredAt.After(existing.LastSyncAt) {
			action = "stale"
			return nil
		}

		linked, err := s.linkReservation(ctx, tx, ev.EventMeta, ev.Booking)
		if err != nil {
			return err
		}
		if linked != nil {
			existing.ReservationID = linked
		}

		b := ev.Booking
		existing.ResourceID = resourceID
		existing.StartDate, existing.EndDate = b.Stay.Start, b.Stay.End
		existing.Units = b.Units
		existing.GuestName, existing.GuestEmail, existing.GuestPhone = b.GuestName, b.GuestEmail, b.GuestPhone
		existing.Amount, existing.Currency = b.Amount, b.Currency
		existing.Status = entity.ExternalBookingModified
		existing.LastSyncAt = ev.OccurredAt
		existing.UpdatedAt = s.now().UTC()
		if err := tx.ExternalBooking.Update(ctx, existing); err != nil {
			return err
		}
		result, action = existing, "updated"
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return result, action, nil
}

// applyCancelled marks the booking cancelled. A cancellation for a booking not
// seen yet leaves a tombstone so a late created delivery cannot revive it.
func (s *syncService) applyCancelled(ctx context.Context, ev BookingCancelled) (*entity.ExternalBooking, string, error) {
	var (
		result *entity.ExternalBooking
		action string
	)
	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.ExternalBooking.LockExternalID(ctx, ev.Platform, ev.ExternalID); err != nil {
			return err
		}
		existing, err := tx.ExternalBooking.FindByExternalIDForUpdate(ctx, ev.Platform, ev.ExternalID)
		if err != nil {
			return err
		}
		if existing == nil {
			action = "tombstoned"
			return tx.ExternalBooking.RecordTombstone(ctx, ev.Platform, ev.ExternalID, ev.OccurredAt)
		}
		if !ev.OccurredAt.After(existing.LastSyncAt) {
			action = "stale"
			return nil
		}
		if existing.Status == entity.ExternalBookingCancelled {
			action = "already cancelled"
			return nil
		}

		existing.Status = entity.ExternalBookingCancelled
		existing.LastSyncAt = ev.OccurredAt
		existing.UpdatedAt = s.now().UTC()
		if err := tx.ExternalBooking.Update(ctx, existing); err != nil {
			return err
		}
		result, action = existing, "cancelled"
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return result, action, nil
}
