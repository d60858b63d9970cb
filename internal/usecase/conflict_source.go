package usecase

import (
	"context"
	"fmt"

	"resort-booking/internal/data/entity"
	"resort-booking/internal/data/repository"
)

// ConflictReader answers whether one source of truth claims a resource is
// occupied during a window. Readers never mutate state.
type ConflictReader interface {
	Source() entity.ConflictSource
	FindConflicts(ctx context.Context, resource *entity.Resource, window entity.DateRange) ([]entity.Conflict, error)
}

func reservationStayKey(id entity.ReservationID) string {
	return "reservation:" + id.String()
}

type blockReader struct {
	repo repository.ManualBlockRepository
}

func NewBlockReader(repo repository.ManualBlockRepository) ConflictReader {
	return &blockReader{repo: repo}
}

func (r *blockReader) Source() entity.ConflictSource { return entity.ConflictSourceBlock }

func (r *blockReader) FindConflicts(ctx context.Context, resource *entity.Resource, window entity.DateRange) ([]entity.Conflict, error) {
	blocks, err := r.repo.FindActiveOverlapping(ctx, resource, window)
	if err != nil {
		return nil, fmt.Errorf("read manual blocks: %w", err)
	}

	conflicts := make([]entity.Conflict, 0, len(blocks))
	for _, b := range blocks {
		if !b.IsActive || !b.Range().Overlaps(window) {
			continue
		}
		label := string(b.Type)
		if b.HotelWide() {
			label += " (hotel-wide)"
		}
		if b.Reason != "" {
			label += ": " + b.Reason
		}
		conflicts = append(conflicts, entity.Conflict{
			SourceType: entity.ConflictSourceBlock,
			SourceID:   b.ID.String(),
			Range:      b.Range(),
			Label:      label,
			StayKey:    "block:" + b.ID.String(),
		})
	}
	return conflicts, nil
}

type internalReader struct {
	repo repository.ReservationItemRepository
}

func NewInternalReader(repo repository.ReservationItemRepository) ConflictReader {
	return &internalReader{repo: repo}
}

func (r *internalReader) Source() entity.ConflictSource { return entity.ConflictSourceInternal }

func (r *internalReader) FindConflicts(ctx context.Context, resource *entity.Resource, window entity.DateRange) ([]entity.Conflict, error) {
	items, err := r.repo.FindOccupying(ctx, resource.ID, window)
	if err != nil {
		return nil, fmt.Errorf("read internal reservations: %w", err)
	}

	conflicts := make([]entity.Conflict, 0, len(items))
	for _, o := range items {
		rng, ok := o.Item.Range()
		if !ok || !o.Status.HoldsInventory() || !rng.Overlaps(window) {
			continue
		}
		conflicts = append(conflicts, entity.Conflict{
			SourceType: entity.ConflictSourceInternal,
			SourceID:   o.Item.ID.String(),
			Range:      rng,
			Label:      fmt.Sprintf("%s (%s)", o.ConfirmationNumber, o.Status),
			Units:      o.Item.Quantity,
			StayKey:    reservationStayKey(o.Item.ReservationID),
			Tentative:  o.Status == entity.ReservationStatusPending,
		})
	}
	return conflicts, nil
}

type externalReader struct {
	repo repository.ExternalBookingRepository
}

func NewExternalReader(repo repository.ExternalBookingRepository) ConflictReader {
	return &externalReader{repo: repo}
}

func (r *externalReader) Source() entity.ConflictSource { return entity.ConflictSourceExternal }

func (r *externalReader) FindConflicts(ctx context.Context, resource *entity.Resource, window entity.DateRange) ([]entity.Conflict, error) {
	bookings, err := r.repo.FindActiveOverlapping(ctx, resource.ID, window)
	if err != nil {
		return nil, fmt.Errorf("read external bookings: %w", err)
	}

	conflicts := make([]entity.Conflict, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == entity.ExternalBookingCancelled || !b.Range().Overlaps(window) {
			continue
		}
		// a channel booking linked to a local reservation is the same stay
		key := "external:" + b.Platform + "/" + b.ExternalID
		if b.ReservationID != nil {
			key = reservationStayKey(*b.ReservationID)
		}
		conflicts = append(conflicts, entity.Conflict{
			SourceType: entity.ConflictSourceExternal,
			SourceID:   b.Platform + ":" + b.ExternalID,
			Range:      b.Range(),
			Label:      fmt.Sprintf("%s %s (%s)", b.Platform, b.ExternalID, b.GuestName),
			Units:      b.Units,
			StayKey:    key,
		})
	}
	return conflicts, nil
}
